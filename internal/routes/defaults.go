package routes

import "net/http"

// Logical backend services. Each resolves to a base URL through config.
const (
	ServiceAuth      = "auth"
	ServiceCatalog   = "catalog"
	ServiceInventory = "inventory"
	ServiceOrders    = "orders"
	ServiceReviews   = "reviews"
	ServiceUsers     = "users"
)

// Domains.
const (
	DomainAuth           = "auth"
	DomainBrand          = "brand"
	DomainInventory      = "inventory"
	DomainReturns        = "returns"
	DomainReviews        = "reviews"
	DomainMetadata       = "metadata"
	DomainOrderItems     = "order_items"
	DomainRecentlyViewed = "recently_viewed"
)

// Defaults returns the canonical route table. The lowercase /api/auth and
// singular /api/inventory spellings are the reconciled variants; use a
// routes file to point at a backend that still serves the others.
func Defaults() []Route {
	return []Route{
		// auth
		{DomainAuth, "register", ServiceAuth, http.MethodPost, "/api/auth/register"},
		{DomainAuth, "login", ServiceAuth, http.MethodPost, "/api/auth/login"},
		{DomainAuth, "logout", ServiceAuth, http.MethodPost, "/api/auth/logout"},
		{DomainAuth, "me", ServiceAuth, http.MethodGet, "/api/auth/me"},
		{DomainAuth, "validate", ServiceAuth, http.MethodGet, "/api/auth/validate"},
		{DomainAuth, "change_password", ServiceAuth, http.MethodPost, "/api/auth/users/{id}/changepassword"},
		{DomainAuth, "update_user", ServiceAuth, http.MethodPatch, "/api/auth/users/{id}"},

		// brand
		{DomainBrand, "list", ServiceCatalog, http.MethodGet, "/api/brands"},
		{DomainBrand, "create", ServiceCatalog, http.MethodPost, "/api/brand"},
		{DomainBrand, "update", ServiceCatalog, http.MethodPatch, "/api/brand/{id}"},
		{DomainBrand, "delete", ServiceCatalog, http.MethodDelete, "/api/brand/{id}"},

		// inventory
		{DomainInventory, "by_product", ServiceInventory, http.MethodGet, "/api/inventory/product/{id}"},
		{DomainInventory, "create", ServiceInventory, http.MethodPost, "/api/inventory"},
		{DomainInventory, "update", ServiceInventory, http.MethodPatch, "/api/inventory/{id}"},

		// returns
		{DomainReturns, "create", ServiceOrders, http.MethodPost, "/api/returns"},
		{DomainReturns, "list", ServiceOrders, http.MethodGet, "/api/returns"},
		{DomainReturns, "get", ServiceOrders, http.MethodGet, "/api/returns/{id}"},
		{DomainReturns, "list_for_user", ServiceOrders, http.MethodGet, "/api/user/returns/user/{id}"},
		{DomainReturns, "update", ServiceOrders, http.MethodPatch, "/api/returns/{id}"},

		// reviews
		{DomainReviews, "create", ServiceReviews, http.MethodPost, "/api/reviews"},
		{DomainReviews, "list", ServiceReviews, http.MethodGet, "/api/reviews"},
		{DomainReviews, "by_product", ServiceReviews, http.MethodGet, "/api/reviews/product/{id}"},
		{DomainReviews, "delete", ServiceReviews, http.MethodDelete, "/api/reviews/{id}"},

		// metadata
		{DomainMetadata, "colors", ServiceCatalog, http.MethodGet, "/api/metadata/colors"},
		{DomainMetadata, "sizes", ServiceCatalog, http.MethodGet, "/api/metadata/sizes"},
		{DomainMetadata, "ratings", ServiceCatalog, http.MethodGet, "/api/metadata/ratings"},
		{DomainMetadata, "brands", ServiceCatalog, http.MethodGet, "/api/metadata/brands"},
		{DomainMetadata, "categories", ServiceCatalog, http.MethodGet, "/api/metadata/categories"},
		{DomainMetadata, "products", ServiceCatalog, http.MethodGet, "/api/metadata/products"},

		// order items
		{DomainOrderItems, "list", ServiceOrders, http.MethodGet, "/api/orders/{id}/items"},
		{DomainOrderItems, "add", ServiceOrders, http.MethodPost, "/api/orders/{id}/items"},
		{DomainOrderItems, "remove", ServiceOrders, http.MethodDelete, "/api/orders/{id}/items/{itemId}"},

		// recently viewed
		{DomainRecentlyViewed, "list", ServiceUsers, http.MethodGet, "/api/user/recently-viewed"},
		{DomainRecentlyViewed, "record", ServiceUsers, http.MethodPost, "/api/user/recently-viewed"},
	}
}
