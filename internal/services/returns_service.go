package services

import (
	"context"
	"net/url"

	"github.com/tbourn/go-storefront-gateway/internal/domain"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

var (
	returnsCreate      = routes.Key{Domain: routes.DomainReturns, Operation: "create"}
	returnsList        = routes.Key{Domain: routes.DomainReturns, Operation: "list"}
	returnsGet         = routes.Key{Domain: routes.DomainReturns, Operation: "get"}
	returnsListForUser = routes.Key{Domain: routes.DomainReturns, Operation: "list_for_user"}
	returnsUpdate      = routes.Key{Domain: routes.DomainReturns, Operation: "update"}
)

// ReturnsService manages customer returns.
type ReturnsService struct {
	D Dispatcher
}

// Create opens a return.
func (s *ReturnsService) Create(ctx context.Context, in domain.ReturnRequest) (*domain.Return, error) {
	var out domain.Return
	if err := s.D.Invoke(ctx, returnsCreate, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns all returns, optionally filtered by status.
func (s *ReturnsService) List(ctx context.Context, status string) ([]domain.Return, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	var out []domain.Return
	if err := s.D.InvokeQuery(ctx, returnsList, nil, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one return.
func (s *ReturnsService) Get(ctx context.Context, returnID string) (*domain.Return, error) {
	if err := requireID("return id", returnID); err != nil {
		return nil, err
	}
	var out domain.Return
	if err := s.D.Invoke(ctx, returnsGet, id(returnID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListForUser returns the returns opened by userID.
func (s *ReturnsService) ListForUser(ctx context.Context, userID string) ([]domain.Return, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	var out []domain.Return
	if err := s.D.Invoke(ctx, returnsListForUser, id(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes a return, typically its status.
func (s *ReturnsService) Update(ctx context.Context, returnID string, patch domain.ReturnPatch) (*domain.Return, error) {
	if err := requireID("return id", returnID); err != nil {
		return nil, err
	}
	var out domain.Return
	if err := s.D.Invoke(ctx, returnsUpdate, id(returnID), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
