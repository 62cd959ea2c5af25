package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when the requested part does not exist.
	ErrNotFound = errors.New("part not found")

	ErrNameRequired  = errors.New("name is required")
	ErrNegativePrice = errors.New("price must not be negative")
	ErrNegativeStock = errors.New("stock quantity must not be negative")
)

// Part is a catalog record: current price, stock on hand and, when the part
// is awaiting restock, the supplier delivery date.
type Part struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	StockQuantity  int             `json:"stock_quantity"`
	DateOfDelivery *time.Time      `json:"date_of_delivery,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Validate ensures the part adheres to catalog constraints.
func (p Part) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.StockQuantity < 0 {
		return ErrNegativeStock
	}
	return nil
}

// Patch carries the optional fields of a partial update. Nil fields are left
// untouched; each present field is applied individually.
type Patch struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	StockQuantity  *int
	DateOfDelivery *time.Time
}

// Apply overlays the patch onto the part.
func (p Patch) Apply(part *Part) {
	if p.Name != nil {
		part.Name = *p.Name
	}
	if p.Description != nil {
		part.Description = *p.Description
	}
	if p.Price != nil {
		part.Price = *p.Price
	}
	if p.StockQuantity != nil {
		part.StockQuantity = *p.StockQuantity
	}
	if p.DateOfDelivery != nil {
		part.DateOfDelivery = p.DateOfDelivery
	}
}
