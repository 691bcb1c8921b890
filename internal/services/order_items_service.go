package services

import (
	"context"

	"github.com/tbourn/go-storefront-gateway/internal/domain"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

var (
	orderItemsList   = routes.Key{Domain: routes.DomainOrderItems, Operation: "list"}
	orderItemsAdd    = routes.Key{Domain: routes.DomainOrderItems, Operation: "add"}
	orderItemsRemove = routes.Key{Domain: routes.DomainOrderItems, Operation: "remove"}
)

// OrderItemsService edits the lines of an order.
type OrderItemsService struct {
	D Dispatcher
}

// List returns the lines of orderID.
func (s *OrderItemsService) List(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	if err := requireID("order id", orderID); err != nil {
		return nil, err
	}
	var out []domain.OrderItem
	if err := s.D.Invoke(ctx, orderItemsList, id(orderID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Add appends a line to orderID.
func (s *OrderItemsService) Add(ctx context.Context, orderID string, in domain.OrderItemInput) (*domain.OrderItem, error) {
	if err := requireID("order id", orderID); err != nil {
		return nil, err
	}
	var out domain.OrderItem
	if err := s.D.Invoke(ctx, orderItemsAdd, id(orderID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Remove deletes line itemID from orderID.
func (s *OrderItemsService) Remove(ctx context.Context, orderID, itemID string) error {
	if err := requireID("order id", orderID); err != nil {
		return err
	}
	if err := requireID("item id", itemID); err != nil {
		return err
	}
	return s.D.Invoke(ctx, orderItemsRemove, map[string]string{"id": orderID, "itemId": itemID}, nil, nil)
}
