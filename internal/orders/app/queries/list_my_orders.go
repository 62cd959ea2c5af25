package queries

import (
	"context"
	"errors"

	"github.com/partshub/api/internal/orders/domain"
	"github.com/partshub/api/internal/orders/ports"
)

// ListMyOrdersQuery lists the caller's own orders, newest first.
type ListMyOrdersQuery struct {
	CallerID string
}

func (q ListMyOrdersQuery) Validate() error {
	if q.CallerID == "" {
		return errors.New("caller_id is required")
	}
	return nil
}

type ListMyOrdersQueryHandler struct {
	repo ports.OrderRepository
}

func NewListMyOrdersQueryHandler(repo ports.OrderRepository) *ListMyOrdersQueryHandler {
	return &ListMyOrdersQueryHandler{repo: repo}
}

func (h *ListMyOrdersQueryHandler) Handle(ctx context.Context, query ListMyOrdersQuery) ([]domain.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.repo.ListByUser(ctx, query.CallerID)
}
