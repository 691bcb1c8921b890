package services

import (
	"context"

	"github.com/tbourn/go-storefront-gateway/internal/domain"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

var (
	recentlyViewedList   = routes.Key{Domain: routes.DomainRecentlyViewed, Operation: "list"}
	recentlyViewedRecord = routes.Key{Domain: routes.DomainRecentlyViewed, Operation: "record"}
)

// RecentlyViewedService reads and appends the session user's browsing history.
type RecentlyViewedService struct {
	D Dispatcher
}

// List returns the current user's recently viewed products, newest first.
func (s *RecentlyViewedService) List(ctx context.Context) ([]domain.RecentlyViewed, error) {
	var out []domain.RecentlyViewed
	if err := s.D.Invoke(ctx, recentlyViewedList, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Record marks productID as viewed.
func (s *RecentlyViewedService) Record(ctx context.Context, productID string) error {
	if err := requireID("product id", productID); err != nil {
		return err
	}
	return s.D.Invoke(ctx, recentlyViewedRecord, nil, domain.ViewInput{ProductID: productID}, nil)
}
