package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/core/ports"
)

// ReservationRepo implements ports.ReservationRepository with pgx.
type ReservationRepo struct {
	db *DB
}

// NewReservationRepo creates a new ReservationRepo.
func NewReservationRepo(db *DB) *ReservationRepo {
	return &ReservationRepo{db: db}
}

// Create inserts a reservation and its lines in one transaction. The quote
// fields are stored as given and never recomputed afterwards.
func (r *ReservationRepo) Create(ctx context.Context, res *domain.Reservation) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO reservations (
			user_id, customer_name, customer_email, customer_phone,
			street, house_number, city, event_date, status,
			subtotal, transport_cost, total, zone_id, zone_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`,
		res.UserID, res.CustomerName, res.CustomerEmail, res.CustomerPhone,
		res.Address.Street, res.Address.HouseNumber, res.Address.City,
		res.EventDate, res.Status,
		res.Subtotal, res.TransportCost, res.Total, res.ZoneID, res.ZoneName,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	batch := &pgx.Batch{}
	for _, line := range res.Lines {
		batch.Queue(`
			INSERT INTO reservation_lines (
				reservation_id, product_id, product_name, unit_price,
				quantity, extra_hours, extra_hour_percentage, line_total
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, res.ID, line.ProductID, line.ProductName, line.UnitPrice,
			line.Quantity, line.ExtraHours, line.ExtraHourPercentage, line.LineTotal)
	}
	br := tx.SendBatch(ctx, batch)
	for range res.Lines {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert line: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID returns a reservation with its lines.
func (r *ReservationRepo) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, customer_name, customer_email, COALESCE(customer_phone, ''),
		       street, house_number, COALESCE(city, ''), event_date, status,
		       subtotal, transport_cost, total, zone_id, COALESCE(zone_name, ''),
		       created_at, updated_at
		FROM reservations WHERE id = $1
	`, id).Scan(
		&res.ID, &res.UserID, &res.CustomerName, &res.CustomerEmail, &res.CustomerPhone,
		&res.Address.Street, &res.Address.HouseNumber, &res.Address.City,
		&res.EventDate, &res.Status,
		&res.Subtotal, &res.TransportCost, &res.Total, &res.ZoneID, &res.ZoneName,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT product_id, product_name, unit_price, quantity,
		       extra_hours, extra_hour_percentage, line_total
		FROM reservation_lines
		WHERE reservation_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.ReservationLine
		if err := rows.Scan(
			&line.ProductID, &line.ProductName, &line.UnitPrice, &line.Quantity,
			&line.ExtraHours, &line.ExtraHourPercentage, &line.LineTotal,
		); err != nil {
			return nil, err
		}
		res.Lines = append(res.Lines, line)
	}
	return &res, rows.Err()
}

// List returns reservations matching the filter, newest first, plus the
// total count for pagination headers.
func (r *ReservationRepo) List(ctx context.Context, filter ports.ReservationFilter) ([]domain.Reservation, int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*)
		FROM reservations
		WHERE ($1 = '' OR status = $1)
		  AND ($2::timestamptz IS NULL OR event_date >= $2)
		  AND ($3::timestamptz IS NULL OR event_date <= $3)
	`, filter.Status, filter.From, filter.To).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, customer_name, customer_email, COALESCE(customer_phone, ''),
		       street, house_number, COALESCE(city, ''), event_date, status,
		       subtotal, transport_cost, total, zone_id, COALESCE(zone_name, ''),
		       created_at, updated_at
		FROM reservations
		WHERE ($1 = '' OR status = $1)
		  AND ($2::timestamptz IS NULL OR event_date >= $2)
		  AND ($3::timestamptz IS NULL OR event_date <= $3)
		ORDER BY created_at DESC
		OFFSET $4 LIMIT $5
	`, filter.Status, filter.From, filter.To, filter.Offset, filter.Limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID, &res.UserID, &res.CustomerName, &res.CustomerEmail, &res.CustomerPhone,
			&res.Address.Street, &res.Address.HouseNumber, &res.Address.City,
			&res.EventDate, &res.Status,
			&res.Subtotal, &res.TransportCost, &res.Total, &res.ZoneID, &res.ZoneName,
			&res.CreatedAt, &res.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		reservations = append(reservations, res)
	}
	return reservations, total, rows.Err()
}

// UpdateStatus moves a reservation to a new status.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE reservations SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// OccupancyBetween returns per-day reservation counts, inclusive of both
// bounds. Cancelled reservations do not occupy the calendar.
func (r *ReservationRepo) OccupancyBetween(ctx context.Context, from, to time.Time) ([]domain.DayOccupancy, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT date_trunc('day', event_date) AS day, count(*)
		FROM reservations
		WHERE event_date >= $1 AND event_date <= $2
		  AND status <> 'cancelled'
		GROUP BY day
		ORDER BY day
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []domain.DayOccupancy
	for rows.Next() {
		var d domain.DayOccupancy
		if err := rows.Scan(&d.Day, &d.Reservations); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
