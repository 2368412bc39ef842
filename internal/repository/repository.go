package repository

import (
	"context"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProductRepository defines the interface for product data access operations.
// All reads and writes are scoped to the owning seller.
type ProductRepository interface {
	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// GetForOwner retrieves a product by ID, scoped to its owner.
	// Returns nil without error when no such product exists.
	GetForOwner(ctx context.Context, owner, id uuid.UUID) (*model.Product, error)

	// GetAllForOwner retrieves a seller's products with pagination support.
	GetAllForOwner(ctx context.Context, owner uuid.UUID, limit, offset int) ([]model.Product, error)

	// Update persists all mutable product fields.
	Update(ctx context.Context, product *model.Product) error

	// Delete removes a product scoped to its owner. Returns false when no
	// such product exists.
	Delete(ctx context.Context, owner, id uuid.UUID) (bool, error)

	// LockForOwner retrieves a product by ID within the provided transaction,
	// taking a row lock so concurrent stock mutations are serialised.
	// Returns nil without error when no such product exists.
	LockForOwner(ctx context.Context, tx pgx.Tx, owner, id uuid.UUID) (*model.Product, error)

	// UpdateStock persists the stock counters within the provided transaction.
	UpdateStock(ctx context.Context, tx pgx.Tx, product *model.Product) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Insert creates the order row within the provided transaction.
	Insert(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// InsertItem creates a line item row within the provided transaction.
	InsertItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error

	// SetTotal updates the order total within the provided transaction.
	SetTotal(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, total decimal.Decimal) error

	// OrderNumberExists reports whether an order number is already taken.
	OrderNumberExists(ctx context.Context, number string) (bool, error)

	// GetForOwner retrieves an order with its items, scoped to its owner.
	// Returns nil without error when no such order exists.
	GetForOwner(ctx context.Context, owner, id uuid.UUID) (*model.Order, error)

	// LockForOwner retrieves an order with its items within the provided
	// transaction, taking a row lock on the order.
	LockForOwner(ctx context.Context, tx pgx.Tx, owner, id uuid.UUID) (*model.Order, error)

	// ListForOwner retrieves a seller's orders with items, newest first,
	// optionally filtered by status and search text.
	ListForOwner(ctx context.Context, owner uuid.UUID, filter model.OrderFilter) ([]model.Order, error)

	// Update persists the patchable order fields.
	Update(ctx context.Context, order *model.Order) error

	// Delete removes an order within the provided transaction; line items
	// cascade.
	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// StatsForOwner aggregates order counts per status and total revenue.
	StatsForOwner(ctx context.Context, owner uuid.UUID) (*model.OrderStats, error)
}

// UserRepository defines the interface for seller account lookups.
type UserRepository interface {
	// Create inserts a new user account.
	Create(ctx context.Context, user *model.User) error

	// GetByUsername retrieves a user by username.
	// Returns nil without error when no such user exists.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// GetByID retrieves a user by ID.
	// Returns nil without error when no such user exists.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}
