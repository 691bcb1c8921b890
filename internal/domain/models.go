// Package domain defines the payloads exchanged with the storefront backends.
//
// These types mirror the JSON contracts of the auth, catalog, inventory,
// orders, reviews and users services. The gateway never interprets them
// beyond routing: they exist so Go callers get typed requests and responses.
// JSON names follow the backends' camelCase convention.
package domain

import "time"

// User is an account as returned by the auth service.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email,omitempty"`
	Role        string    `json:"role,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// TokenValidation is returned by the validate endpoint.
type TokenValidation struct {
	Valid     bool       `json:"valid"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// ChangePasswordRequest changes a user's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UserPatch is a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// Brand is a catalog brand.
type Brand struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

// BrandInput creates or patches a brand.
type BrandInput struct {
	Name        string `json:"name,omitempty"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	LogoURL     string `json:"logoUrl,omitempty"`
}

// InventoryItem is the stock record of one product variant.
type InventoryItem struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	SKU       string    `json:"sku,omitempty"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InventoryInput creates a stock record.
type InventoryInput struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku,omitempty"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
	Quantity  int    `json:"quantity"`
}

// InventoryPatch adjusts a stock record.
type InventoryPatch struct {
	Quantity *int    `json:"quantity,omitempty"`
	SKU      *string `json:"sku,omitempty"`
}

// ReturnLine is one item of a return request.
type ReturnLine struct {
	OrderItemID string `json:"orderItemId"`
	Quantity    int    `json:"quantity"`
}

// Return is a customer return (RMA).
type Return struct {
	ID        string       `json:"id"`
	OrderID   string       `json:"orderId"`
	UserID    string       `json:"userId"`
	Reason    string       `json:"reason,omitempty"`
	Status    string       `json:"status"`
	Items     []ReturnLine `json:"items,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ReturnRequest opens a return.
type ReturnRequest struct {
	OrderID string       `json:"orderId"`
	Reason  string       `json:"reason,omitempty"`
	Items   []ReturnLine `json:"items"`
}

// ReturnPatch updates a return, typically its status.
type ReturnPatch struct {
	Status string `json:"status,omitempty"`
	Note   string `json:"note,omitempty"`
}

// Review is a product review.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId,omitempty"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewInput submits a review.
type ReviewInput struct {
	ProductID string `json:"productId"`
	Rating    int    `json:"rating"`
	Title     string `json:"title,omitempty"`
	Body      string `json:"body,omitempty"`
}

// MetadataOption is one entry of a metadata list (color, size, category...).
type MetadataOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
	Count int    `json:"count,omitempty"`
}

// OrderItem is a line of an order.
type OrderItem struct {
	ID        string  `json:"id"`
	OrderID   string  `json:"orderId"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// OrderItemInput adds a line to an order.
type OrderItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// RecentlyViewed is one entry of a user's browsing history.
type RecentlyViewed struct {
	ProductID string    `json:"productId"`
	ViewedAt  time.Time `json:"viewedAt"`
}

// ViewInput records a product view.
type ViewInput struct {
	ProductID string `json:"productId"`
}
