package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalogue item owned by a seller. Stock counters are
// mutated only inside order transactions.
type Product struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Description    string          `json:"description" db:"description"`
	Category       string          `json:"category" db:"category"`
	CostPrice      decimal.Decimal `json:"costPrice" db:"cost_price"`
	SellingPrice   decimal.Decimal `json:"sellingPrice" db:"selling_price"`
	StockAvailable int             `json:"stockAvailable" db:"stock_available"`
	UnitsSold      int             `json:"unitsSold" db:"units_sold"`
	CreatedBy      uuid.UUID       `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

// ProfitMargin returns the margin over cost as a percentage, or zero when the
// cost price is zero.
func (p *Product) ProfitMargin() decimal.Decimal {
	if p.CostPrice.IsZero() {
		return decimal.Zero
	}
	return p.SellingPrice.Sub(p.CostPrice).
		Div(p.CostPrice).
		Mul(decimal.NewFromInt(100))
}

// ProductRequest represents the request payload for creating a product.
type ProductRequest struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	CostPrice      decimal.Decimal `json:"costPrice"`
	SellingPrice   decimal.Decimal `json:"sellingPrice"`
	StockAvailable int             `json:"stockAvailable"`
}

// ProductPatch represents a partial product update. Nil fields are left
// untouched.
type ProductPatch struct {
	Name           *string          `json:"name,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Category       *string          `json:"category,omitempty"`
	CostPrice      *decimal.Decimal `json:"costPrice,omitempty"`
	SellingPrice   *decimal.Decimal `json:"sellingPrice,omitempty"`
	StockAvailable *int             `json:"stockAvailable,omitempty"`
}

// ProductResponse is a product together with its derived metrics.
type ProductResponse struct {
	Product
	ProfitMargin decimal.Decimal `json:"profitMargin"`
}

// NewProductResponse builds the response representation of a product.
func NewProductResponse(p Product) ProductResponse {
	return ProductResponse{Product: p, ProfitMargin: p.ProfitMargin()}
}
