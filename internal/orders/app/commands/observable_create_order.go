package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/partshub/api/internal/orders/domain"
	"github.com/partshub/api/internal/orders/metrics"
	"github.com/partshub/api/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "CreateOrderCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		duration := time.Since(start).Seconds()
		o.metrics.RecordOrderCreationDuration(ctx, duration)
		o.metrics.RecordOrderCreated(ctx, success)
	}()

	o.logger.InfoContext(ctx, "creating order",
		"user_id", cmd.UserID,
		"line_items", len(cmd.Items),
	)

	order, err := o.handler.Handle(ctx, cmd)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to create order",
			"error", err,
			"user_id", cmd.UserID,
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", order.ID),
		attribute.String("order.user_id", order.UserID),
		attribute.String("order.total_price", order.TotalPrice.String()),
		attribute.Int("order.estimated_fulfillment_days", order.EstimatedFulfillmentDays),
	)

	o.logger.InfoContext(ctx, "order created successfully",
		"order_id", order.ID,
		"user_id", order.UserID,
		"total_price", order.TotalPrice.String(),
		"estimated_fulfillment_days", order.EstimatedFulfillmentDays,
	)

	o.metrics.RecordFulfillmentDelay(ctx, order.EstimatedFulfillmentDays)

	success = true
	telemetry.SetSpanSuccess(span)

	return order, nil
}
