package postgres

import (
	"context"

	"github.com/nmoreno/fiestero/internal/core/domain"
)

// AuditRepo implements ports.AuditLogRepository with pgx.
type AuditRepo struct {
	db *DB
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(db *DB) *AuditRepo {
	return &AuditRepo{db: db}
}

// Insert appends an audit entry.
func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO audit_log (actor, action, entity, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, e.Actor, e.Action, e.Entity, e.EntityID, e.Details).Scan(&e.ID, &e.CreatedAt)
}

// List returns audit entries, newest first, optionally filtered by entity.
func (r *AuditRepo) List(ctx context.Context, entity string, offset, limit int) ([]domain.AuditEntry, int, error) {
	var total int
	err := r.db.Pool.QueryRow(ctx, `
		SELECT count(*) FROM audit_log WHERE ($1 = '' OR entity = $1)
	`, entity).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, actor, action, entity, entity_id, COALESCE(details, '{}'), created_at
		FROM audit_log
		WHERE ($1 = '' OR entity = $1)
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`, entity, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.Actor, &e.Action, &e.Entity, &e.EntityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
