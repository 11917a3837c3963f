package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/core/usecases"
)

// --- Mock repositories ---

type mockCartRepo struct {
	addItemFn   func(ctx context.Context, userID string, item *domain.CartLineItem) error
	listItemsFn func(ctx context.Context, userID string) ([]domain.CartLineItem, error)
	clearFn     func(ctx context.Context, userID string) error
}

func (m *mockCartRepo) AddItem(ctx context.Context, userID string, item *domain.CartLineItem) error {
	if m.addItemFn != nil {
		return m.addItemFn(ctx, userID, item)
	}
	return nil
}
func (m *mockCartRepo) UpdateItem(ctx context.Context, userID, itemID string, quantity, extraHours int) error {
	return nil
}
func (m *mockCartRepo) RemoveItem(ctx context.Context, userID, itemID string) error { return nil }
func (m *mockCartRepo) ListItems(ctx context.Context, userID string) ([]domain.CartLineItem, error) {
	if m.listItemsFn != nil {
		return m.listItemsFn(ctx, userID)
	}
	return nil, nil
}
func (m *mockCartRepo) Clear(ctx context.Context, userID string) error {
	if m.clearFn != nil {
		return m.clearFn(ctx, userID)
	}
	return nil
}

type mockProductRepo struct {
	getByIDFn func(ctx context.Context, id string) (*domain.Product, error)
	listFn    func(ctx context.Context, category string, activeOnly bool) ([]domain.Product, error)
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error { return nil }
func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product) error { return nil }
func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockProductRepo) List(ctx context.Context, category string, activeOnly bool) ([]domain.Product, error) {
	if m.listFn != nil {
		return m.listFn(ctx, category, activeOnly)
	}
	return nil, nil
}

func productFixture() *domain.Product {
	return &domain.Product{
		ID:                  "p1",
		Name:                "sound system",
		Category:            "audio",
		UnitPrice:           decimal.NewFromInt(8000),
		ExtraHourPercentage: decimal.NewFromInt(10),
		Active:              true,
	}
}

// --- Tests ---

func TestCartService_AddItem_SnapshotsPricing(t *testing.T) {
	var stored *domain.CartLineItem
	carts := &mockCartRepo{
		addItemFn: func(ctx context.Context, userID string, item *domain.CartLineItem) error {
			stored = item
			return nil
		},
	}
	products := &mockProductRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Product, error) {
			return productFixture(), nil
		},
	}

	svc := usecases.NewCartService(carts, products)
	item, err := svc.AddItem(context.Background(), "u1", "p1", 3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil {
		t.Fatal("expected item persisted")
	}
	if !item.UnitPrice.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("expected unit price copied from product, got %s", item.UnitPrice)
	}
	if !item.ExtraHourPercentage.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected extra hour percentage copied, got %s", item.ExtraHourPercentage)
	}
	if item.Quantity != 3 || item.ExtraHours != 2 {
		t.Errorf("expected quantity 3 / extra hours 2, got %d / %d", item.Quantity, item.ExtraHours)
	}
}

func TestCartService_AddItem_RejectsBadQuantities(t *testing.T) {
	svc := usecases.NewCartService(&mockCartRepo{}, &mockProductRepo{})

	if _, err := svc.AddItem(context.Background(), "u1", "p1", 0, 0); err == nil {
		t.Error("expected error for zero quantity")
	}
	if _, err := svc.AddItem(context.Background(), "u1", "p1", 1, -1); err == nil {
		t.Error("expected error for negative extra hours")
	}
}

func TestCartService_AddItem_RejectsInactiveProduct(t *testing.T) {
	products := &mockProductRepo{
		getByIDFn: func(ctx context.Context, id string) (*domain.Product, error) {
			p := productFixture()
			p.Active = false
			return p, nil
		},
	}

	svc := usecases.NewCartService(&mockCartRepo{}, products)
	if _, err := svc.AddItem(context.Background(), "u1", "p1", 1, 0); err == nil {
		t.Error("expected error adding inactive product")
	}
}

func TestCartService_AddItem_UnknownProduct(t *testing.T) {
	svc := usecases.NewCartService(&mockCartRepo{}, &mockProductRepo{})

	_, err := svc.AddItem(context.Background(), "u1", "missing", 1, 0)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCartService_UpdateItem_Validation(t *testing.T) {
	svc := usecases.NewCartService(&mockCartRepo{}, &mockProductRepo{})

	if err := svc.UpdateItem(context.Background(), "u1", "i1", 0, 0); err == nil {
		t.Error("expected error for zero quantity")
	}
	if err := svc.UpdateItem(context.Background(), "u1", "i1", 2, -3); err == nil {
		t.Error("expected error for negative extra hours")
	}
	if err := svc.UpdateItem(context.Background(), "u1", "i1", 2, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
