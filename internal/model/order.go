package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

// Order lifecycle states. New orders always start as StatusPending.
const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order represents a customer order with its line items. TotalAmount always
// equals the sum of the items' total prices once creation has committed.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderNumber     string          `json:"orderNumber" db:"order_number"`
	CustomerName    string          `json:"customerName" db:"customer_name"`
	CustomerEmail   string          `json:"customerEmail" db:"customer_email"`
	CustomerPhone   string          `json:"customerPhone,omitempty" db:"customer_phone"`
	CustomerAddress string          `json:"customerAddress" db:"customer_address"`
	Status          OrderStatus     `json:"status" db:"status"`
	TotalAmount     decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	CreatedBy       uuid.UUID       `json:"createdBy" db:"created_by"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
	Items           []OrderItem     `json:"items"`
}

// ItemsCount returns the number of line items on the order.
func (o *Order) ItemsCount() int {
	return len(o.Items)
}

// OrderItem represents a line item in an order. UnitPrice is a snapshot of the
// product's selling price at creation time; later price changes do not affect
// existing orders.
type OrderItem struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderID         uuid.UUID       `json:"-" db:"order_id"`
	ProductID       uuid.UUID       `json:"productId" db:"product_id"`
	ProductName     string          `json:"productName" db:"product_name"`
	ProductCategory string          `json:"productCategory" db:"product_category"`
	LineNo          int             `json:"-" db:"line_no"`
	Quantity        int             `json:"quantity" db:"quantity"`
	UnitPrice       decimal.Decimal `json:"unitPrice" db:"unit_price"`
	TotalPrice      decimal.Decimal `json:"totalPrice" db:"total_price"`
	CreatedAt       time.Time       `json:"-" db:"created_at"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	CustomerName    string             `json:"customerName"`
	CustomerEmail   string             `json:"customerEmail"`
	CustomerPhone   string             `json:"customerPhone,omitempty"`
	CustomerAddress string             `json:"customerAddress"`
	Notes           string             `json:"notes,omitempty"`
	Items           []OrderItemRequest `json:"items"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// OrderPatch represents a partial order update. Only the whitelisted fields
// below may be changed after creation; nil fields are left untouched.
type OrderPatch struct {
	Status          *OrderStatus `json:"status,omitempty"`
	Notes           *string      `json:"notes,omitempty"`
	CustomerName    *string      `json:"customerName,omitempty"`
	CustomerEmail   *string      `json:"customerEmail,omitempty"`
	CustomerPhone   *string      `json:"customerPhone,omitempty"`
	CustomerAddress *string      `json:"customerAddress,omitempty"`
}

// OrderFilter narrows an order listing.
type OrderFilter struct {
	// Status filters by exact status match. Empty (or "all") means no filter.
	Status string

	// Search is matched case-insensitively against order number, customer
	// name and customer email.
	Search string
}

// OrderResponse is an order together with derived fields.
type OrderResponse struct {
	Order
	ItemsCount int `json:"itemsCount"`
}

// NewOrderResponse builds the response representation of an order.
func NewOrderResponse(o Order) OrderResponse {
	return OrderResponse{Order: o, ItemsCount: o.ItemsCount()}
}

// OrderStats summarises a seller's orders per status. TotalRevenue sums the
// totals of all orders regardless of fulfilment state.
type OrderStats struct {
	TotalOrders      int             `json:"totalOrders"`
	PendingOrders    int             `json:"pendingOrders"`
	ConfirmedOrders  int             `json:"confirmedOrders"`
	ProcessingOrders int             `json:"processingOrders"`
	ShippedOrders    int             `json:"shippedOrders"`
	DeliveredOrders  int             `json:"deliveredOrders"`
	CancelledOrders  int             `json:"cancelledOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
}
