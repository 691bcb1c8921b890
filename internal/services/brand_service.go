package services

import (
	"context"

	"github.com/tbourn/go-storefront-gateway/internal/domain"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

var (
	brandList   = routes.Key{Domain: routes.DomainBrand, Operation: "list"}
	brandCreate = routes.Key{Domain: routes.DomainBrand, Operation: "create"}
	brandUpdate = routes.Key{Domain: routes.DomainBrand, Operation: "update"}
	brandDelete = routes.Key{Domain: routes.DomainBrand, Operation: "delete"}
)

// BrandService manages catalog brands.
type BrandService struct {
	D Dispatcher
}

// List returns all brands.
func (s *BrandService) List(ctx context.Context) ([]domain.Brand, error) {
	var out []domain.Brand
	if err := s.D.Invoke(ctx, brandList, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a brand.
func (s *BrandService) Create(ctx context.Context, in domain.BrandInput) (*domain.Brand, error) {
	var out domain.Brand
	if err := s.D.Invoke(ctx, brandCreate, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update patches brand brandID.
func (s *BrandService) Update(ctx context.Context, brandID string, in domain.BrandInput) (*domain.Brand, error) {
	if err := requireID("brand id", brandID); err != nil {
		return nil, err
	}
	var out domain.Brand
	if err := s.D.Invoke(ctx, brandUpdate, id(brandID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes brand brandID.
func (s *BrandService) Delete(ctx context.Context, brandID string) error {
	if err := requireID("brand id", brandID); err != nil {
		return err
	}
	return s.D.Invoke(ctx, brandDelete, id(brandID), nil, nil)
}
