package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/core/usecases"
)

// userID extracts the caller identity set by the auth gateway upstream.
func userID(c *fiber.Ctx) string {
	return c.Get("X-User-ID")
}

// ListProductsHandler returns the active product catalog.
func ListProductsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := deps.Catalog.List(c.Context(), c.Query("category"))
		if err != nil {
			return errInternal(c, err.Error())
		}

		// Apply offset/limit pagination on the full list
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(products)
		if offset >= total {
			products = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			products = products[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: products, Pagination: pg})
	}
}

// GetProductHandler returns a single product by ID.
func GetProductHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "product id is required")
		}
		product, err := deps.Catalog.GetByID(c.Context(), id)
		if err != nil {
			return errNotFound(c, "product not found")
		}
		return c.JSON(product)
	}
}

// ListZonesHandler returns all delivery zones.
func ListZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zones, err := deps.Zones.List(c.Context())
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(zones)
	}
}

// MatchZoneHandler resolves a raw coordinate against the zone list. Useful
// for the admin map view and for debugging zone boundaries.
func MatchZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)

		match, err := deps.Zones.Match(c.Context(), &domain.GeoPoint{Lat: lat, Lon: lon})
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(match)
	}
}

type quoteRequest struct {
	Street      string `json:"street"`
	HouseNumber string `json:"house_number"`
	City        string `json:"city"`
}

// QuoteHandler prices the caller's cart against a delivery address: geocode,
// match zone, sum line totals plus the transport surcharge. The quote is
// informational; totals are frozen only at checkout.
func QuoteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := userID(c)
		if uid == "" {
			return errUnauthorized(c, "X-User-ID header is required")
		}

		var req quoteRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Street == "" || req.HouseNumber == "" {
			return errBadRequest(c, "street and house_number are required")
		}

		items, err := deps.Carts.ListItems(c.Context(), uid)
		if err != nil {
			return errInternal(c, err.Error())
		}

		addr := &domain.Address{Street: req.Street, HouseNumber: req.HouseNumber, City: req.City}
		quote, err := deps.Quotes.QuoteForAddress(c.Context(), items, addr)
		if err != nil {
			return quoteError(c, err)
		}
		return c.JSON(quote)
	}
}

// quoteError maps geocoding failures onto distinct HTTP responses so clients
// can tell a bad address from a provider outage.
func quoteError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrAddressNotFound):
		return errUnprocessable(c, "address_not_found", "the delivery address could not be located")
	case errors.Is(err, domain.ErrGeocoderUnavailable):
		return errBadGateway(c, "geocoder_unavailable", "address lookup is temporarily unavailable")
	default:
		return errInternal(c, err.Error())
	}
}

// GetCartHandler returns the caller's cart lines.
func GetCartHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := userID(c)
		if uid == "" {
			return errUnauthorized(c, "X-User-ID header is required")
		}

		items, err := deps.Carts.ListItems(c.Context(), uid)
		if err != nil {
			return errInternal(c, err.Error())
		}

		// Items plus a zero-transport quote so the cart page can show totals
		// before an address is entered.
		quote := deps.Quotes.QuoteCart(items, usecases.MatchResult{})
		return c.JSON(quote)
	}
}

type addItemRequest struct {
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	ExtraHours int    `json:"extra_hours"`
}

// AddCartItemHandler adds a product to the caller's cart.
func AddCartItemHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := userID(c)
		if uid == "" {
			return errUnauthorized(c, "X-User-ID header is required")
		}

		var req addItemRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.ProductID == "" {
			return errBadRequest(c, "product_id is required")
		}

		item, err := deps.Carts.AddItem(c.Context(), uid, req.ProductID, req.Quantity, req.ExtraHours)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "product not found")
			}
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(item)
	}
}

type updateItemRequest struct {
	Quantity   int `json:"quantity"`
	ExtraHours int `json:"extra_hours"`
}

// UpdateCartItemHandler adjusts quantity and extra hours on a cart line.
func UpdateCartItemHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := userID(c)
		if uid == "" {
			return errUnauthorized(c, "X-User-ID header is required")
		}

		var req updateItemRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		err := deps.Carts.UpdateItem(c.Context(), uid, c.Params("id"), req.Quantity, req.ExtraHours)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "cart item not found")
			}
			return errBadRequest(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// RemoveCartItemHandler deletes a line from the caller's cart.
func RemoveCartItemHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := userID(c)
		if uid == "" {
			return errUnauthorized(c, "X-User-ID header is required")
		}

		if err := deps.Carts.RemoveItem(c.Context(), uid, c.Params("id")); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "cart item not found")
			}
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// ClearCartHandler empties the caller's cart.
func ClearCartHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := userID(c)
		if uid == "" {
			return errUnauthorized(c, "X-User-ID header is required")
		}
		if err := deps.Carts.Clear(c.Context(), uid); err != nil {
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

type checkoutRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	Street        string `json:"street"`
	HouseNumber   string `json:"house_number"`
	City          string `json:"city"`
	EventDate     string `json:"event_date"`
}

// CheckoutHandler converts the caller's cart into a reservation with frozen
// totals.
func CheckoutHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := userID(c)
		if uid == "" {
			return errUnauthorized(c, "X-User-ID header is required")
		}

		var req checkoutRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		eventDate, err := time.Parse("2006-01-02", req.EventDate)
		if err != nil {
			return errBadRequest(c, "event_date must be YYYY-MM-DD")
		}

		res, err := deps.Reservations.Checkout(c.Context(), uid, usecases.CheckoutInput{
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
			Address:       domain.Address{Street: req.Street, HouseNumber: req.HouseNumber, City: req.City},
			EventDate:     eventDate,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrEmptyCart):
				return errConflict(c, "cart is empty")
			case errors.Is(err, domain.ErrAddressNotFound), errors.Is(err, domain.ErrGeocoderUnavailable):
				return quoteError(c, err)
			default:
				return errBadRequest(c, err.Error())
			}
		}
		return c.Status(201).JSON(res)
	}
}

// GetReservationHandler returns one reservation with its frozen quote.
func GetReservationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.Reservations.GetByID(c.Context(), c.Params("id"))
		if err != nil {
			return errNotFound(c, "reservation not found")
		}
		return c.JSON(res)
	}
}
