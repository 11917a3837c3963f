package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/nmoreno/fiestero/internal/core/domain"
)

// ProductRepo implements ports.ProductRepository with pgx.
type ProductRepo struct {
	db *DB
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(db *DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// Create inserts a product and fills in the generated id and timestamp.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return r.db.Pool.QueryRow(ctx, `
		INSERT INTO products (name, description, category, unit_price, extra_hour_percentage, image_url, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, p.Name, p.Description, p.Category, p.UnitPrice, p.ExtraHourPercentage, p.ImageURL, p.Active).
		Scan(&p.ID, &p.CreatedAt)
}

// Update replaces the mutable fields of a product.
func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, category = $4, unit_price = $5,
		    extra_hour_percentage = $6, image_url = $7, active = $8
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Category, p.UnitPrice, p.ExtraHourPercentage, p.ImageURL, p.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID returns a product by UUID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), category, unit_price,
		       extra_hour_percentage, COALESCE(image_url, ''), active, created_at
		FROM products WHERE id = $1
	`, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.UnitPrice,
		&p.ExtraHourPercentage, &p.ImageURL, &p.Active, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products, optionally restricted to a category and to active
// rows only. Ordered by name for stable catalog pages.
func (r *ProductRepo) List(ctx context.Context, category string, activeOnly bool) ([]domain.Product, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), category, unit_price,
		       extra_hour_percentage, COALESCE(image_url, ''), active, created_at
		FROM products
		WHERE ($1 = '' OR category = $1)
		  AND (NOT $2 OR active)
		ORDER BY name
	`, category, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Category, &p.UnitPrice,
			&p.ExtraHourPercentage, &p.ImageURL, &p.Active, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
