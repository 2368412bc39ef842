package service

import (
	"context"

	"orderdesk/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue management. Every operation
// is scoped to the calling seller.
type ProductService interface {
	// Create adds a product to the caller's catalogue.
	Create(ctx context.Context, caller uuid.UUID, req *model.ProductRequest) (*model.Product, error)

	// GetAll retrieves the caller's products with pagination.
	GetAll(ctx context.Context, caller uuid.UUID, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, caller, id uuid.UUID) (*model.Product, error)

	// Update applies a partial update to a product.
	Update(ctx context.Context, caller, id uuid.UUID, patch *model.ProductPatch) (*model.Product, error)

	// Delete removes a product from the caller's catalogue.
	Delete(ctx context.Context, caller, id uuid.UUID) error
}

// OrderService defines operations for order management. Every operation is
// scoped to the calling seller.
type OrderService interface {
	// CreateOrder atomically creates an order against live inventory. Either
	// every line item is created and every product's stock decremented, or
	// nothing persists.
	CreateOrder(ctx context.Context, caller uuid.UUID, req *model.OrderRequest) (*model.Order, error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, caller, id uuid.UUID) (*model.Order, error)

	// List retrieves the caller's orders, newest first, optionally filtered.
	List(ctx context.Context, caller uuid.UUID, filter model.OrderFilter) ([]model.Order, error)

	// Update applies a whitelisted partial update to an order.
	Update(ctx context.Context, caller, id uuid.UUID, patch *model.OrderPatch) (*model.Order, error)

	// Delete removes a pending order and restores the stock it consumed.
	Delete(ctx context.Context, caller, id uuid.UUID) error

	// Stats summarises the caller's orders per status with total revenue.
	Stats(ctx context.Context, caller uuid.UUID) (*model.OrderStats, error)
}
