package metrics

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	return metrics, reader
}

func TestInitializeMetrics(t *testing.T) {
	metrics, _ := newTestMetrics(t)

	if metrics.ordersCreatedTotal == nil {
		t.Error("ordersCreatedTotal is nil")
	}
	if metrics.orderCreationDuration == nil {
		t.Error("orderCreationDuration is nil")
	}
	if metrics.fulfillmentDelayDays == nil {
		t.Error("fulfillmentDelayDays is nil")
	}
}

func TestRecordOrderCreated(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	ctx := context.Background()

	metrics.RecordOrderCreated(ctx, true)
	metrics.RecordOrderCreated(ctx, false)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "orders_created_total" {
				continue
			}
			found = true
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatal("expected Sum[int64] data type")
			}
			// one data point per status attribute
			if len(sum.DataPoints) != 2 {
				t.Errorf("expected 2 data points, got %d", len(sum.DataPoints))
			}
		}
	}

	if !found {
		t.Error("orders_created_total metric not found")
	}
}

func TestRecordFulfillmentDelay(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	ctx := context.Background()

	metrics.RecordFulfillmentDelay(ctx, 0)
	metrics.RecordFulfillmentDelay(ctx, 5)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "order_estimated_fulfillment_days" {
				continue
			}
			found = true
			histogram, ok := m.Data.(metricdata.Histogram[int64])
			if !ok {
				t.Fatal("expected Histogram[int64] data type")
			}
			if histogram.DataPoints[0].Count != 2 {
				t.Errorf("expected count=2, got %d", histogram.DataPoints[0].Count)
			}
		}
	}

	if !found {
		t.Error("order_estimated_fulfillment_days metric not found")
	}
}
