package services

// Services bundles one wrapper per domain over a shared dispatcher.
type Services struct {
	Auth           *AuthService
	Brand          *BrandService
	Inventory      *InventoryService
	Returns        *ReturnsService
	Reviews        *ReviewsService
	Metadata       *MetadataService
	OrderItems     *OrderItemsService
	RecentlyViewed *RecentlyViewedService
}

// New builds every domain wrapper around d.
func New(d Dispatcher) *Services {
	return &Services{
		Auth:           &AuthService{D: d},
		Brand:          &BrandService{D: d},
		Inventory:      &InventoryService{D: d},
		Returns:        &ReturnsService{D: d},
		Reviews:        &ReviewsService{D: d},
		Metadata:       &MetadataService{D: d},
		OrderItems:     &OrderItemsService{D: d},
		RecentlyViewed: &RecentlyViewedService{D: d},
	}
}
