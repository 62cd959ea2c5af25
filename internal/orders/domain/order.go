package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus captures the fulfillment lifecycle of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus captures the payment side of the lifecycle, orthogonal to OrderStatus.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// LineItem is a single (part, quantity) entry. Immutable once the order exists.
type LineItem struct {
	PartID   string `json:"part_id"`
	Quantity int    `json:"quantity"`
}

// Order represents a customer purchase priced against the catalog at creation time.
// TotalPrice and EstimatedFulfillmentDays are derived once and never recomputed,
// even if catalog prices or stock change later.
type Order struct {
	ID                       string          `json:"id"`
	UserID                   string          `json:"user_id"`
	LineItems                []LineItem      `json:"line_items"`
	TotalPrice               decimal.Decimal `json:"total_price"`
	EstimatedFulfillmentDays int             `json:"estimated_fulfillment_days"`
	Status                   OrderStatus     `json:"status"`
	PaymentStatus            PaymentStatus   `json:"payment_status"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

// NewOrder assembles a pending/pending order from a completed estimate.
func NewOrder(id, userID string, items []LineItem, est Estimate, now time.Time) Order {
	return Order{
		ID:                       id,
		UserID:                   userID,
		LineItems:                items,
		TotalPrice:               est.TotalPrice,
		EstimatedFulfillmentDays: est.FulfillmentDays,
		Status:                   StatusPending,
		PaymentStatus:            PaymentPending,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}

// ValidateLineItems checks structural validity before any catalog lookup.
// It fails on the first offending item.
func ValidateLineItems(items []LineItem) error {
	if len(items) == 0 {
		return ErrNoLineItems
	}
	for i, item := range items {
		if item.PartID == "" {
			return fmt.Errorf("line item %d: %w", i, ErrPartIDRequired)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("line item %d: %w", i, ErrQuantityTooLow)
		}
	}
	return nil
}

// Pay marks the order as paid. Payment moves only forward; paying twice is a conflict.
func (o *Order) Pay() error {
	if o.PaymentStatus == PaymentCompleted {
		return ErrAlreadyPaid
	}
	o.PaymentStatus = PaymentCompleted
	return nil
}

// Cancel marks the order as cancelled. Shipped and delivered orders cannot be
// cancelled; payment status is left untouched (refunds are out of scope).
func (o *Order) Cancel() error {
	switch o.Status {
	case StatusShipped, StatusDelivered:
		return ErrAlreadyShipped
	case StatusCancelled:
		return ErrAlreadyCancelled
	}
	o.Status = StatusCancelled
	return nil
}

// CanBeViewedBy grants read access to the owner and to administrators.
// Pay and cancel stay owner-only; admins get no mutation override.
func (o *Order) CanBeViewedBy(callerID, callerRole string) bool {
	return callerRole == "admin" || o.UserID == callerID
}
