package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nmoreno/fiestero/internal/core/domain"
	"github.com/nmoreno/fiestero/internal/core/ports"
)

// CatalogService serves the public product catalog.
type CatalogService struct {
	products ports.ProductRepository
	cache    ports.CacheService
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products ports.ProductRepository, cache ports.CacheService) *CatalogService {
	return &CatalogService{products: products, cache: cache}
}

// List returns active products, optionally filtered by category.
func (s *CatalogService) List(ctx context.Context, category string) ([]domain.Product, error) {
	cacheKey := fmt.Sprintf("catalog:list:%s", category)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var products []domain.Product
			if err := json.Unmarshal(data, &products); err == nil {
				return products, nil
			}
		}
	}

	products, err := s.products.List(ctx, category, true)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(products); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 300)
		}
	}
	return products, nil
}

// GetByID returns a single product.
func (s *CatalogService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

// Save creates or updates a product (admin) and drops cached listings.
func (s *CatalogService) Save(ctx context.Context, p *domain.Product) error {
	if p.Name == "" {
		return fmt.Errorf("product name is required")
	}
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price must not be negative")
	}

	// Remember the old category so moving a product between categories also
	// drops the listing it left.
	var prevCategory string
	if p.ID != "" {
		if prev, err := s.products.GetByID(ctx, p.ID); err == nil {
			prevCategory = prev.Category
		}
	}

	var err error
	if p.ID == "" {
		err = s.products.Create(ctx, p)
	} else {
		err = s.products.Update(ctx, p)
	}
	if err != nil {
		return err
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, "catalog:list:")
		_ = s.cache.Delete(ctx, fmt.Sprintf("catalog:list:%s", p.Category))
		if prevCategory != "" && prevCategory != p.Category {
			_ = s.cache.Delete(ctx, fmt.Sprintf("catalog:list:%s", prevCategory))
		}
	}
	return nil
}
