package adapters

import (
	"context"
	"time"

	"github.com/partshub/api/internal/kafka"
	"github.com/partshub/api/internal/orders/ports"
	"github.com/partshub/api/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableEventBus wraps an EventBus with tracing and publish metrics.
type ObservableEventBus struct {
	bus     ports.EventBus
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	return e.publish(ctx, "order.created", orderID, e.bus.PublishOrderCreated)
}

func (e *ObservableEventBus) PublishOrderPaid(ctx context.Context, orderID string) error {
	return e.publish(ctx, "order.paid", orderID, e.bus.PublishOrderPaid)
}

func (e *ObservableEventBus) PublishOrderCancelled(ctx context.Context, orderID string) error {
	return e.publish(ctx, "order.cancelled", orderID, e.bus.PublishOrderCancelled)
}

func (e *ObservableEventBus) publish(ctx context.Context, eventType, orderID string, fn func(context.Context, string) error) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.Publish")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", orderID),
		attribute.String("event.type", eventType),
	)

	start := time.Now()
	err := fn(ctx, orderID)
	e.metrics.RecordPublish(ctx, eventType, time.Since(start).Seconds(), err == nil)

	if err != nil {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return nil
}
