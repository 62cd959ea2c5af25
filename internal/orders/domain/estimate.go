package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Part is the slice of a catalog record the estimator needs: current price,
// stock on hand and the next restock date, if one is known.
type Part struct {
	ID             string
	Name           string
	Price          decimal.Decimal
	StockQuantity  int
	DateOfDelivery *time.Time
}

// Estimate is the order-level result of pricing a set of line items.
type Estimate struct {
	TotalPrice      decimal.Decimal
	FulfillmentDays int
}

// EstimateFulfillment prices the given line items against the resolved parts
// and derives the fulfillment delay. Each item contributes price × quantity to
// the total. An item short on stock contributes the whole days until its
// part's delivery date; the order-level delay is the maximum contribution,
// because the order ships only once its slowest item restocks. A short item
// whose part has no delivery date makes the whole estimate fail.
//
// Stock is read, never reserved: concurrent orders may see the same quantities.
func EstimateFulfillment(items []LineItem, parts map[string]Part, now time.Time) (Estimate, error) {
	est := Estimate{TotalPrice: decimal.Zero}

	for _, item := range items {
		part, ok := parts[item.PartID]
		if !ok {
			return Estimate{}, fmt.Errorf("part %s: %w", item.PartID, ErrUnknownParts)
		}

		est.TotalPrice = est.TotalPrice.Add(part.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))

		shortfall := item.Quantity - part.StockQuantity
		if shortfall <= 0 {
			continue
		}

		if part.DateOfDelivery == nil {
			return Estimate{}, fmt.Errorf("part %s: %w", part.Name, ErrOutOfStock)
		}

		if days := daysUntil(now, *part.DateOfDelivery); days > est.FulfillmentDays {
			est.FulfillmentDays = days
		}
	}

	return est, nil
}

// daysUntil counts whole days from now to the given instant, rounding up.
// A date already in the past contributes zero, never a negative value.
func daysUntil(now, to time.Time) int {
	days := int(math.Ceil(to.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}
