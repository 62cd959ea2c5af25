package queries

import (
	"context"
	"errors"

	"github.com/partshub/api/internal/orders/domain"
	"github.com/partshub/api/internal/orders/ports"
)

// GetOrderQuery represents a request to retrieve an order on behalf of a caller.
type GetOrderQuery struct {
	OrderID    string
	CallerID   string
	CallerRole string
}

// Validate ensures the query has valid parameters.
func (q GetOrderQuery) Validate() error {
	if q.OrderID == "" {
		return errors.New("order_id is required")
	}
	if q.CallerID == "" {
		return errors.New("caller_id is required")
	}
	return nil
}

// GetOrderQueryHandler executes GetOrderQuery, enforcing owner-or-admin access.
type GetOrderQueryHandler struct {
	repo ports.OrderRepository
}

// NewGetOrderQueryHandler constructs a GetOrderQueryHandler.
func NewGetOrderQueryHandler(repo ports.OrderRepository) *GetOrderQueryHandler {
	return &GetOrderQueryHandler{repo: repo}
}

// Handle retrieves the order if it exists and the caller may view it.
func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	order, err := h.repo.GetByID(ctx, query.OrderID)
	if err != nil {
		return nil, err
	}

	if !order.CanBeViewedBy(query.CallerID, query.CallerRole) {
		return nil, domain.ErrForbidden
	}

	return order, nil
}
