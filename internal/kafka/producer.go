package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// EventBus publishes order lifecycle events to a Kafka topic as JSON records
// keyed by order id, so all events for one order land in the same partition.
type EventBus struct {
	client *kgo.Client
	topic  string
}

type orderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEventBus connects a producer to the given brokers.
func NewEventBus(brokers []string, topic string) (*EventBus, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &EventBus{client: client, topic: topic}, nil
}

func (b *EventBus) PublishOrderCreated(ctx context.Context, orderID string) error {
	return b.publish(ctx, "order.created", orderID)
}

func (b *EventBus) PublishOrderPaid(ctx context.Context, orderID string) error {
	return b.publish(ctx, "order.paid", orderID)
}

func (b *EventBus) PublishOrderCancelled(ctx context.Context, orderID string) error {
	return b.publish(ctx, "order.cancelled", orderID)
}

func (b *EventBus) publish(ctx context.Context, eventType, orderID string) error {
	payload, err := json.Marshal(orderEvent{
		Type:       eventType,
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	record := &kgo.Record{
		Topic: b.topic,
		Key:   []byte(orderID),
		Value: payload,
	}

	if err := b.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish %s to topic %s: %w", eventType, b.topic, err)
	}

	return nil
}

// Close flushes and shuts down the producer.
func (b *EventBus) Close() {
	b.client.Close()
}
