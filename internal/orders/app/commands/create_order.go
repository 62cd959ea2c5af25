package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/partshub/api/internal/clock"
	"github.com/partshub/api/internal/orders/domain"
	"github.com/partshub/api/internal/orders/ports"
)

type CreateOrderCommand struct {
	UserID string
	Items  []domain.LineItem
}

func (c CreateOrderCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("user id is required")
	}
	return domain.ValidateLineItems(c.Items)
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error)
}

// CreateOrderCommandHandler runs the full creation pipeline: structural
// validation, one batch catalog read, fulfillment estimation, then a single
// write. Any failure aborts before the write; no partial order is persisted.
type CreateOrderCommandHandler struct {
	repo   ports.OrderRepository
	parts  ports.PartsReader
	events ports.EventBus
	clock  clock.Clock
}

func NewCreateOrderCommandHandler(
	repo ports.OrderRepository,
	parts ports.PartsReader,
	events ports.EventBus,
	clk clock.Clock,
) *CreateOrderCommandHandler {
	return &CreateOrderCommandHandler{
		repo:   repo,
		parts:  parts,
		events: events,
		clock:  clk,
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ids := distinctPartIDs(cmd.Items)

	parts, err := h.parts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve parts: %w", err)
	}
	if len(parts) < len(ids) {
		return nil, domain.ErrUnknownParts
	}

	now := h.clock.Now()

	est, err := domain.EstimateFulfillment(cmd.Items, parts, now)
	if err != nil {
		return nil, err
	}

	order := domain.NewOrder(uuid.NewString(), cmd.UserID, cmd.Items, est, now)

	if err := h.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := h.events.PublishOrderCreated(ctx, order.ID); err != nil {
		return &order, fmt.Errorf("order saved but failed to publish event: %w", err)
	}

	return &order, nil
}

func distinctPartIDs(items []domain.LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.PartID]; ok {
			continue
		}
		seen[item.PartID] = struct{}{}
		ids = append(ids, item.PartID)
	}
	return ids
}
