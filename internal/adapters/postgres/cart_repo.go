package postgres

import (
	"context"

	"github.com/nmoreno/fiestero/internal/core/domain"
)

// CartRepo implements ports.CartRepository with pgx. Carts are keyed by user;
// the cart row is created lazily on first AddItem.
type CartRepo struct {
	db *DB
}

// NewCartRepo creates a new CartRepo.
func NewCartRepo(db *DB) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) ensureCart(ctx context.Context, userID string) (string, error) {
	var cartID string
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id
	`, userID).Scan(&cartID)
	return cartID, err
}

// AddItem appends a line to the user's cart. Adding the same product again
// bumps the quantity instead of duplicating the line.
func (r *CartRepo) AddItem(ctx context.Context, userID string, item *domain.CartLineItem) error {
	cartID, err := r.ensureCart(ctx, userID)
	if err != nil {
		return err
	}

	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, extra_hours)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity,
		    extra_hours = EXCLUDED.extra_hours
		RETURNING id, cart_id, quantity, created_at
	`, cartID, item.ProductID, item.Quantity, item.ExtraHours).
		Scan(&item.ID, &item.CartID, &item.Quantity, &item.CreatedAt)
	return err
}

// UpdateItem adjusts quantity and extra hours on one line.
func (r *CartRepo) UpdateItem(ctx context.Context, userID, itemID string, quantity, extraHours int) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE cart_items ci
		SET quantity = $3, extra_hours = $4
		FROM carts c
		WHERE ci.id = $2 AND ci.cart_id = c.id AND c.user_id = $1
	`, userID, itemID, quantity, extraHours)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RemoveItem deletes one line from the user's cart.
func (r *CartRepo) RemoveItem(ctx context.Context, userID, itemID string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.id = $2 AND ci.cart_id = c.id AND c.user_id = $1
	`, userID, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListItems returns the cart lines with pricing fields joined from products,
// so the quote always reflects current prices until checkout freezes them.
func (r *CartRepo) ListItems(ctx context.Context, userID string) ([]domain.CartLineItem, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, p.name, p.unit_price,
		       ci.quantity, ci.extra_hours, p.extra_hour_percentage, ci.created_at
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN products p ON p.id = ci.product_id
		WHERE c.user_id = $1
		ORDER BY ci.created_at, ci.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartLineItem
	for rows.Next() {
		var it domain.CartLineItem
		if err := rows.Scan(
			&it.ID, &it.CartID, &it.ProductID, &it.ProductName, &it.UnitPrice,
			&it.Quantity, &it.ExtraHours, &it.ExtraHourPercentage, &it.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Clear empties the user's cart.
func (r *CartRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.db.Pool.Exec(ctx, `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.cart_id = c.id AND c.user_id = $1
	`, userID)
	return err
}
