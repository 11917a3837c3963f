package ports

import (
	"context"
	"time"

	"github.com/nmoreno/fiestero/internal/core/domain"
)

// ProductRepository persists catalog products.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, category string, activeOnly bool) ([]domain.Product, error)
}

// ZoneRepository persists delivery zones.
type ZoneRepository interface {
	Create(ctx context.Context, z *domain.Zone) error
	Update(ctx context.Context, z *domain.Zone) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Zone, error)
	// List returns every zone in creation order; matching relies on this
	// ordering for its deterministic tie-break.
	List(ctx context.Context) ([]domain.Zone, error)
}

// CartRepository persists cart line items. Reads join product pricing fields.
type CartRepository interface {
	AddItem(ctx context.Context, userID string, item *domain.CartLineItem) error
	UpdateItem(ctx context.Context, userID, itemID string, quantity, extraHours int) error
	RemoveItem(ctx context.Context, userID, itemID string) error
	ListItems(ctx context.Context, userID string) ([]domain.CartLineItem, error)
	Clear(ctx context.Context, userID string) error
}

// ReservationFilter narrows admin reservation listings.
type ReservationFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

// ReservationRepository persists reservations with frozen quote fields.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]domain.Reservation, int, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// OccupancyBetween returns per-day reservation counts for the
	// availability calendar, inclusive of both bounds.
	OccupancyBetween(ctx context.Context, from, to time.Time) ([]domain.DayOccupancy, error)
}

// AuditLogRepository persists the admin audit trail.
type AuditLogRepository interface {
	Insert(ctx context.Context, e *domain.AuditEntry) error
	List(ctx context.Context, entity string, offset, limit int) ([]domain.AuditEntry, int, error)
}
