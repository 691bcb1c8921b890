package services

import (
	"context"

	"github.com/tbourn/go-storefront-gateway/internal/domain"
	"github.com/tbourn/go-storefront-gateway/internal/routes"
)

var (
	inventoryByProduct = routes.Key{Domain: routes.DomainInventory, Operation: "by_product"}
	inventoryCreate    = routes.Key{Domain: routes.DomainInventory, Operation: "create"}
	inventoryUpdate    = routes.Key{Domain: routes.DomainInventory, Operation: "update"}
)

// InventoryService reads and adjusts stock records.
type InventoryService struct {
	D Dispatcher
}

// ByProduct returns the stock records of productID.
func (s *InventoryService) ByProduct(ctx context.Context, productID string) ([]domain.InventoryItem, error) {
	if err := requireID("product id", productID); err != nil {
		return nil, err
	}
	var out []domain.InventoryItem
	if err := s.D.Invoke(ctx, inventoryByProduct, id(productID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a stock record.
func (s *InventoryService) Create(ctx context.Context, in domain.InventoryInput) (*domain.InventoryItem, error) {
	var out domain.InventoryItem
	if err := s.D.Invoke(ctx, inventoryCreate, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update adjusts stock record itemID.
func (s *InventoryService) Update(ctx context.Context, itemID string, patch domain.InventoryPatch) (*domain.InventoryItem, error) {
	if err := requireID("inventory id", itemID); err != nil {
		return nil, err
	}
	var out domain.InventoryItem
	if err := s.D.Invoke(ctx, inventoryUpdate, id(itemID), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
