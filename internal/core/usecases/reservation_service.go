package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/core/ports"
	"github.com/nmoreno/fiestero/internal/pkg/metrics"
)

// CheckoutInput carries everything checkout needs beyond the cart itself.
type CheckoutInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       domain.Address
	EventDate     time.Time
}

// ReservationService runs checkout and admin reservation management.
type ReservationService struct {
	reservations ports.ReservationRepository
	carts        ports.CartRepository
	audit        ports.AuditLogRepository
	quotes       *QuoteService
	publisher    ports.EventPublisher
}

// NewReservationService creates a new ReservationService.
func NewReservationService(
	reservations ports.ReservationRepository,
	carts ports.CartRepository,
	audit ports.AuditLogRepository,
	quotes *QuoteService,
	publisher ports.EventPublisher,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		carts:        carts,
		audit:        audit,
		quotes:       quotes,
		publisher:    publisher,
	}
}

// Checkout freezes the live quote into a reservation: price the cart against
// the delivery address, persist the totals, clear the cart, and announce the
// reservation. The stored subtotal/transport/total are never recomputed.
func (s *ReservationService) Checkout(ctx context.Context, userID string, in CheckoutInput) (*domain.Reservation, error) {
	if in.CustomerName == "" || in.CustomerEmail == "" {
		return nil, fmt.Errorf("customer name and email are required")
	}
	if in.EventDate.IsZero() {
		return nil, fmt.Errorf("event date is required")
	}

	items, err := s.carts.ListItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	quote, err := s.quotes.QuoteForAddress(ctx, items, &in.Address)
	if err != nil {
		return nil, err
	}

	res := &domain.Reservation{
		UserID:        userID,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		Address:       in.Address,
		EventDate:     in.EventDate,
		Status:        domain.ReservationPending,
		Subtotal:      quote.Subtotal,
		TransportCost: quote.TransportCost,
		Total:         quote.Total,
	}
	if quote.MatchedZone != nil {
		res.ZoneID = &quote.MatchedZone.ID
		res.ZoneName = quote.MatchedZone.Name
	}
	for _, line := range quote.Lines {
		res.Lines = append(res.Lines, domain.ReservationLine{
			ProductID:           line.Item.ProductID,
			ProductName:         line.Item.ProductName,
			UnitPrice:           line.Item.UnitPrice,
			Quantity:            line.Item.Quantity,
			ExtraHours:          line.Item.ExtraHours,
			ExtraHourPercentage: line.Item.ExtraHourPercentage,
			LineTotal:           line.ItemTotal,
		})
	}

	if err := s.reservations.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	metrics.ReservationsCreated.Inc()

	if err := s.carts.Clear(ctx, userID); err != nil {
		// Reservation already exists; a stale cart is an annoyance, not a failure.
		slog.Warn("clear cart after checkout failed", "user_id", userID, "error", err)
	}

	s.recordAudit(ctx, userID, "reservation.created", res.ID, map[string]any{
		"total": res.Total,
		"zone":  res.ZoneName,
	})

	if s.publisher != nil {
		if err := s.publisher.PublishReservationCreated(ctx, res); err != nil {
			slog.Warn("publish reservation created failed", "reservation_id", res.ID, "error", err)
		}
	}

	return res, nil
}

// GetByID returns a reservation with its frozen quote fields.
func (s *ReservationService) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

// List returns reservations for the admin panel, newest first.
func (s *ReservationService) List(ctx context.Context, filter ports.ReservationFilter) ([]domain.Reservation, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.reservations.List(ctx, filter)
}

var validTransitions = map[string][]string{
	domain.ReservationPending:     {domain.ReservationConfirmed, domain.ReservationCancelled, domain.ReservationEmailFailed},
	domain.ReservationEmailFailed: {domain.ReservationConfirmed, domain.ReservationCancelled},
	domain.ReservationConfirmed:   {domain.ReservationDelivered, domain.ReservationCancelled},
	domain.ReservationDelivered:   {domain.ReservationCompleted},
}

// UpdateStatus moves a reservation through its lifecycle and audits the change.
func (s *ReservationService) UpdateStatus(ctx context.Context, actor, id, status string) (*domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range validTransitions[res.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot move reservation from %s to %s", res.Status, status)
	}

	if err := s.reservations.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	res.Status = status

	s.recordAudit(ctx, actor, "reservation.status", id, map[string]any{"status": status})

	if s.publisher != nil {
		if err := s.publisher.PublishReservationStatus(ctx, res); err != nil {
			slog.Warn("publish status change failed", "reservation_id", id, "error", err)
		}
	}
	return res, nil
}

// Occupancy returns the per-day reservation counts for the calendar view.
func (s *ReservationService) Occupancy(ctx context.Context, from, to time.Time) ([]domain.DayOccupancy, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("calendar range end before start")
	}
	return s.reservations.OccupancyBetween(ctx, from, to)
}

// AuditTrail lists audit entries, optionally filtered by entity type.
func (s *ReservationService) AuditTrail(ctx context.Context, entity string, offset, limit int) ([]domain.AuditEntry, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.audit.List(ctx, entity, offset, limit)
}

func (s *ReservationService) recordAudit(ctx context.Context, actor, action, entityID string, details map[string]any) {
	if s.audit == nil {
		return
	}
	data, _ := json.Marshal(details)
	entry := &domain.AuditEntry{
		Actor:    actor,
		Action:   action,
		Entity:   "reservation",
		EntityID: entityID,
		Details:  data,
	}
	if err := s.audit.Insert(ctx, entry); err != nil {
		slog.Warn("audit insert failed", "action", action, "entity_id", entityID, "error", err)
	}
}
