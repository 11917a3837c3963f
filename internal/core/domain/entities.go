package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across use cases.
var (
	// ErrAddressNotFound means the geocoding provider returned no candidates.
	ErrAddressNotFound = errors.New("address not found")
	// ErrGeocoderUnavailable means the geocoding provider could not be reached
	// or returned an unusable response.
	ErrGeocoderUnavailable = errors.New("geocoder unavailable")
	// ErrEmptyCart means a checkout was attempted on a cart with no items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrNotFound is the generic missing-record error surfaced by repositories.
	ErrNotFound = errors.New("not found")
)

// Product is a rentable item in the catalog.
type Product struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	Category            string          `json:"category"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	ExtraHourPercentage decimal.Decimal `json:"extra_hour_percentage"`
	ImageURL            string          `json:"image_url,omitempty"`
	Active              bool            `json:"active"`
	CreatedAt           time.Time       `json:"created_at"`
}

// Zone is an admin-defined delivery region with a flat transport surcharge.
// Boundary holds the stored GeoJSON geometry (Polygon or MultiPolygon);
// it is parsed lazily at match time so one corrupt zone cannot block quoting.
type Zone struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Boundary      json.RawMessage `json:"boundary"`
	TransportCost decimal.Decimal `json:"transport_cost"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Address is a delivery address as entered at checkout.
type Address struct {
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	City        string `json:"city,omitempty"`
}

// CartLineItem is one product entry in a user's cart, carrying the pricing
// fields joined from the product at read time.
type CartLineItem struct {
	ID                  string          `json:"id"`
	CartID              string          `json:"cart_id"`
	ProductID           string          `json:"product_id"`
	ProductName         string          `json:"product_name,omitempty"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Quantity            int             `json:"quantity"`
	ExtraHours          int             `json:"extra_hours"`
	ExtraHourPercentage decimal.Decimal `json:"extra_hour_percentage"`
	CreatedAt           time.Time       `json:"created_at"`
}

// Reservation statuses, in lifecycle order.
const (
	ReservationPending     = "pending"
	ReservationConfirmed   = "confirmed"
	ReservationDelivered   = "delivered"
	ReservationCompleted   = "completed"
	ReservationCancelled   = "cancelled"
	ReservationEmailFailed = "email_failed"
)

// Reservation is a confirmed order. The quote fields (subtotal, transport
// cost, total) are frozen at checkout and never recomputed.
type Reservation struct {
	ID            string             `json:"id"`
	UserID        string             `json:"user_id"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	CustomerPhone string             `json:"customer_phone,omitempty"`
	Address       Address            `json:"address"`
	EventDate     time.Time          `json:"event_date"`
	Status        string             `json:"status"`
	Lines         []ReservationLine  `json:"lines,omitempty"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	TransportCost decimal.Decimal    `json:"transport_cost"`
	Total         decimal.Decimal    `json:"total"`
	ZoneID        *string            `json:"zone_id,omitempty"`
	ZoneName      string             `json:"zone_name,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// ReservationLine is a frozen cart line copied onto a reservation.
type ReservationLine struct {
	ProductID           string          `json:"product_id"`
	ProductName         string          `json:"product_name"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	Quantity            int             `json:"quantity"`
	ExtraHours          int             `json:"extra_hours"`
	ExtraHourPercentage decimal.Decimal `json:"extra_hour_percentage"`
	LineTotal           decimal.Decimal `json:"line_total"`
}

// AuditEntry records an admin- or system-initiated change.
type AuditEntry struct {
	ID        string          `json:"id"`
	Actor     string          `json:"actor"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entity_id"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// DayOccupancy is one cell of the availability calendar.
type DayOccupancy struct {
	Day          time.Time `json:"day"`
	Reservations int       `json:"reservations"`
}
