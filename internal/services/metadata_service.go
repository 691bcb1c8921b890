package services

import (
	"context"

	"github.com/tbourn/go-storefront-gateway/internal/domain"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

// MetadataService reads the catalog's filter lists.
type MetadataService struct {
	D Dispatcher
}

func (s *MetadataService) list(ctx context.Context, op string) ([]domain.MetadataOption, error) {
	var out []domain.MetadataOption
	key := routes.Key{Domain: routes.DomainMetadata, Operation: op}
	if err := s.D.Invoke(ctx, key, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MetadataService) Colors(ctx context.Context) ([]domain.MetadataOption, error) {
	return s.list(ctx, "colors")
}

func (s *MetadataService) Sizes(ctx context.Context) ([]domain.MetadataOption, error) {
	return s.list(ctx, "sizes")
}

func (s *MetadataService) Ratings(ctx context.Context) ([]domain.MetadataOption, error) {
	return s.list(ctx, "ratings")
}

// Brands is the brand filter list; it is also what the brand domain exposes
// as its metadata lookup.
func (s *MetadataService) Brands(ctx context.Context) ([]domain.MetadataOption, error) {
	return s.list(ctx, "brands")
}

func (s *MetadataService) Categories(ctx context.Context) ([]domain.MetadataOption, error) {
	return s.list(ctx, "categories")
}

func (s *MetadataService) Products(ctx context.Context) ([]domain.MetadataOption, error) {
	return s.list(ctx, "products")
}
