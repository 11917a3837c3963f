package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/core/ports"
)

// Admin routes trust the upstream gateway for authentication; the caller
// identity from X-User-ID becomes the audit actor.

// DashboardStats holds the counters shown on the admin landing page.
type DashboardStats struct {
	Products            int    `json:"products"`
	Zones               int    `json:"zones"`
	PendingReservations int    `json:"pending_reservations"`
	TotalReservations   int    `json:"total_reservations"`
	Revenue             string `json:"revenue"`
	LastReservation     string `json:"last_reservation,omitempty"`
}

// AdminStatsHandler returns row counts for the admin dashboard.
func AdminStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats DashboardStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM products),
				(SELECT count(*) FROM zones),
				(SELECT count(*) FROM reservations WHERE status = 'pending'),
				(SELECT count(*) FROM reservations),
				COALESCE((SELECT sum(total) FROM reservations WHERE status <> 'cancelled'), 0)::text,
				COALESCE((SELECT max(created_at)::text FROM reservations), '')
		`)
		if err := row.Scan(&stats.Products, &stats.Zones,
			&stats.PendingReservations, &stats.TotalReservations,
			&stats.Revenue, &stats.LastReservation); err != nil {
			return errInternal(c, err.Error())
		}

		return c.JSON(stats)
	}
}

// AdminListReservationsHandler lists reservations with status and date filters.
func AdminListReservationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := ports.ReservationFilter{
			Status: c.Query("status"),
			Offset: c.QueryInt("offset", 0),
			Limit:  c.QueryInt("limit", 50),
		}
		if from := c.Query("from"); from != "" {
			t, err := time.Parse("2006-01-02", from)
			if err != nil {
				return errBadRequest(c, "from must be YYYY-MM-DD")
			}
			filter.From = &t
		}
		if to := c.Query("to"); to != "" {
			t, err := time.Parse("2006-01-02", to)
			if err != nil {
				return errBadRequest(c, "to must be YYYY-MM-DD")
			}
			filter.To = &t
		}

		reservations, total, err := deps.Reservations.List(c.Context(), filter)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: filter.Offset, Limit: filter.Limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: reservations, Pagination: pg})
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

// AdminUpdateReservationStatusHandler moves a reservation through its
// lifecycle.
func AdminUpdateReservationStatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req statusRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Status == "" {
			return errBadRequest(c, "status is required")
		}

		actor := userID(c)
		if actor == "" {
			actor = "admin"
		}

		res, err := deps.Reservations.UpdateStatus(c.Context(), actor, c.Params("id"), req.Status)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "reservation not found")
			}
			return errConflict(c, err.Error())
		}
		return c.JSON(res)
	}
}

// AdminCalendarHandler returns per-day reservation counts for a date range.
func AdminCalendarHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, err := time.Parse("2006-01-02", c.Query("from"))
		if err != nil {
			return errBadRequest(c, "from must be YYYY-MM-DD")
		}
		to, err := time.Parse("2006-01-02", c.Query("to"))
		if err != nil {
			return errBadRequest(c, "to must be YYYY-MM-DD")
		}

		days, err := deps.Reservations.Occupancy(c.Context(), from, to)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.JSON(days)
	}
}

// AdminAuditLogHandler lists the audit trail.
func AdminAuditLogHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)

		entries, total, err := deps.Reservations.AuditTrail(c.Context(), c.Query("entity"), offset, limit)
		if err != nil {
			return errInternal(c, err.Error())
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: entries, Pagination: pg})
	}
}

// AdminCreateZoneHandler creates a delivery zone. The boundary is validated
// as GeoJSON before it is stored.
func AdminCreateZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var z domain.Zone
		if err := c.BodyParser(&z); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Zones.Create(c.Context(), &z); err != nil {
			return errBadRequest(c, err.Error())
		}
		return c.Status(201).JSON(z)
	}
}

// AdminUpdateZoneHandler updates a delivery zone.
func AdminUpdateZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var z domain.Zone
		if err := c.BodyParser(&z); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		z.ID = c.Params("id")

		if err := deps.Zones.Update(c.Context(), &z); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "zone not found")
			}
			return errBadRequest(c, err.Error())
		}
		return c.JSON(z)
	}
}

// AdminDeleteZoneHandler removes a delivery zone.
func AdminDeleteZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Zones.Delete(c.Context(), c.Params("id")); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "zone not found")
			}
			return errInternal(c, err.Error())
		}
		return c.SendStatus(204)
	}
}

// AdminSaveProductHandler creates or updates a catalog product.
func AdminSaveProductHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p domain.Product
		if err := c.BodyParser(&p); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		p.ID = c.Params("id") // empty on POST, set on PUT

		if err := deps.Catalog.Save(c.Context(), &p); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return errNotFound(c, "product not found")
			}
			return errBadRequest(c, err.Error())
		}

		status := 200
		if c.Method() == fiber.MethodPost {
			status = 201
		}
		return c.Status(status).JSON(p)
	}
}
