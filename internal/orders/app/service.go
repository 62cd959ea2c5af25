package app

import (
	"context"
	"log/slog"

	"github.com/partshub/api/internal/clock"
	"github.com/partshub/api/internal/orders/app/commands"
	"github.com/partshub/api/internal/orders/app/queries"
	"github.com/partshub/api/internal/orders/domain"
	"github.com/partshub/api/internal/orders/metrics"
	"github.com/partshub/api/internal/orders/ports"
)

// Service bundles use cases for handling orders via the API.
type Service struct {
	repo               ports.OrderRepository
	events             ports.EventBus
	idemStore          ports.IdempotencyStore
	logger             *slog.Logger
	createOrderHandler commands.CommandHandler
	getOrderHandler    *queries.GetOrderQueryHandler
	listOrdersHandler  *queries.ListMyOrdersQueryHandler
}

// NewService wires required dependencies.
func NewService(
	repo ports.OrderRepository,
	parts ports.PartsReader,
	events ports.EventBus,
	idem ports.IdempotencyStore,
	clk clock.Clock,
	logger *slog.Logger,
	metrics *metrics.Metrics,
) *Service {
	coreHandler := commands.NewCreateOrderCommandHandler(repo, parts, events, clk)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, logger, metrics)

	return &Service{
		repo:               repo,
		events:             events,
		idemStore:          idem,
		logger:             logger,
		createOrderHandler: observableHandler,
		getOrderHandler:    queries.NewGetOrderQueryHandler(repo),
		listOrdersHandler:  queries.NewListMyOrdersQueryHandler(repo),
	}
}

// CreateOrderInput captures payload for creating an order.
type CreateOrderInput struct {
	UserID string
	Items  []domain.LineItem
}

// CreateOrder orchestrates order creation and event emission.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error) {
	cmd := commands.CreateOrderCommand{
		UserID: input.UserID,
		Items:  input.Items,
	}
	return s.createOrderHandler.Handle(ctx, cmd)
}

// GetOrder retrieves an order, enforcing owner-or-admin visibility.
func (s *Service) GetOrder(ctx context.Context, orderID, callerID, callerRole string) (*domain.Order, error) {
	return s.getOrderHandler.Handle(ctx, queries.GetOrderQuery{
		OrderID:    orderID,
		CallerID:   callerID,
		CallerRole: callerRole,
	})
}

// ListMyOrders returns the caller's orders, newest first.
func (s *Service) ListMyOrders(ctx context.Context, callerID string) ([]domain.Order, error) {
	return s.listOrdersHandler.Handle(ctx, queries.ListMyOrdersQuery{CallerID: callerID})
}

// PayOrder completes payment for an order. Owner-only: administrators cannot
// pay on a user's behalf. The repository applies the transition conditionally,
// so a concurrent duplicate pay surfaces as ErrAlreadyPaid rather than a
// double write.
func (s *Service) PayOrder(ctx context.Context, orderID, callerID string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != callerID {
		return nil, domain.ErrForbidden
	}

	if err := order.Pay(); err != nil {
		return nil, err
	}

	paid, err := s.repo.MarkPaid(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.events.PublishOrderPaid(ctx, orderID); err != nil {
		s.logger.WarnContext(ctx, "order paid but failed to publish event", "order_id", orderID, "error", err)
	}

	return paid, nil
}

// CancelOrder cancels an order. Owner-only, blocked once shipped or delivered.
// Payment status is untouched; refunds are not handled here.
func (s *Service) CancelOrder(ctx context.Context, orderID, callerID string) error {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.UserID != callerID {
		return domain.ErrForbidden
	}

	if err := order.Cancel(); err != nil {
		return err
	}

	if _, err := s.repo.MarkCancelled(ctx, orderID); err != nil {
		return err
	}

	if err := s.events.PublishOrderCancelled(ctx, orderID); err != nil {
		s.logger.WarnContext(ctx, "order cancelled but failed to publish event", "order_id", orderID, "error", err)
	}

	return nil
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
