package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/nmoreno/fiestero/internal/core/domain"
)

// ZoneRepo implements ports.ZoneRepository with pgx.
type ZoneRepo struct {
	db *DB
}

// NewZoneRepo creates a new ZoneRepo.
func NewZoneRepo(db *DB) *ZoneRepo {
	return &ZoneRepo{db: db}
}

// Create inserts a zone and fills in the generated id and timestamp.
func (r *ZoneRepo) Create(ctx context.Context, z *domain.Zone) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO zones (name, boundary, transport_cost, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, z.Name, z.Boundary, z.TransportCost, z.Active).Scan(&z.ID, &z.CreatedAt)
}

// Update replaces the mutable fields of a zone.
func (r *ZoneRepo) Update(ctx context.Context, z *domain.Zone) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE zones
		SET name = $2, boundary = $3, transport_cost = $4, active = $5
		WHERE id = $1
	`, z.ID, z.Name, z.Boundary, z.TransportCost, z.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a zone.
func (r *ZoneRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM zones WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID returns a zone by UUID.
func (r *ZoneRepo) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	var z domain.Zone
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, boundary, transport_cost, active, created_at
		FROM zones WHERE id = $1
	`, id).Scan(&z.ID, &z.Name, &z.Boundary, &z.TransportCost, &z.Active, &z.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &z, nil
}

// List returns every zone ordered by creation time. Matching relies on this
// ordering for its deterministic tie-break, so it must stay stable.
func (r *ZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, boundary, transport_cost, active, created_at
		FROM zones
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []domain.Zone
	for rows.Next() {
		var z domain.Zone
		if err := rows.Scan(&z.ID, &z.Name, &z.Boundary, &z.TransportCost, &z.Active, &z.CreatedAt); err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}
