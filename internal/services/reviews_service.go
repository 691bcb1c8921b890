package services

import (
	"context"
	"net/url"
	"strconv"

	"github.com/tbourn/go-storefront-gateway/internal/domain"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

var (
	reviewsCreate    = routes.Key{Domain: routes.DomainReviews, Operation: "create"}
	reviewsList      = routes.Key{Domain: routes.DomainReviews, Operation: "list"}
	reviewsByProduct = routes.Key{Domain: routes.DomainReviews, Operation: "by_product"}
	reviewsDelete    = routes.Key{Domain: routes.DomainReviews, Operation: "delete"}
)

// ReviewsService manages product reviews.
type ReviewsService struct {
	D Dispatcher
}

// Create submits a review.
func (s *ReviewsService) Create(ctx context.Context, in domain.ReviewInput) (*domain.Review, error) {
	var out domain.Review
	if err := s.D.Invoke(ctx, reviewsCreate, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns a page of reviews. Zero page or size leaves paging to the
// backend.
func (s *ReviewsService) List(ctx context.Context, page, size int) ([]domain.Review, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("pageSize", strconv.Itoa(size))
	}
	var out []domain.Review
	if err := s.D.InvokeQuery(ctx, reviewsList, nil, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByProduct returns the reviews of productID.
func (s *ReviewsService) ByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	if err := requireID("product id", productID); err != nil {
		return nil, err
	}
	var out []domain.Review
	if err := s.D.Invoke(ctx, reviewsByProduct, id(productID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes review reviewID.
func (s *ReviewsService) Delete(ctx context.Context, reviewID string) error {
	if err := requireID("review id", reviewID); err != nil {
		return err
	}
	return s.D.Invoke(ctx, reviewsDelete, id(reviewID), nil, nil)
}
