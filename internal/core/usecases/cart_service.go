package usecases

import (
	"context"
	"fmt"

	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/core/ports"
)

// CartService manages a user's cart. One cart per user; line items carry the
// product pricing fields joined at read time so quoting needs no extra lookups.
type CartService struct {
	carts    ports.CartRepository
	products ports.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(carts ports.CartRepository, products ports.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// AddItem adds a product to the user's cart.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity, extraHours int) (*domain.CartLineItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}
	if extraHours < 0 {
		return nil, fmt.Errorf("extra hours must not be negative")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, fmt.Errorf("product %s is not available", productID)
	}

	item := &domain.CartLineItem{
		ProductID:           product.ID,
		ProductName:         product.Name,
		UnitPrice:           product.UnitPrice,
		ExtraHourPercentage: product.ExtraHourPercentage,
		Quantity:            quantity,
		ExtraHours:          extraHours,
	}
	if err := s.carts.AddItem(ctx, userID, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem adjusts quantity and extra hours on an existing line.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity, extraHours int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if extraHours < 0 {
		return fmt.Errorf("extra hours must not be negative")
	}
	return s.carts.UpdateItem(ctx, userID, itemID, quantity, extraHours)
}

// RemoveItem deletes a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	return s.carts.RemoveItem(ctx, userID, itemID)
}

// ListItems returns the cart contents with joined pricing fields.
func (s *CartService) ListItems(ctx context.Context, userID string) ([]domain.CartLineItem, error) {
	return s.carts.ListItems(ctx, userID)
}

// Clear empties the cart, e.g. after checkout.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.carts.Clear(ctx, userID)
}
