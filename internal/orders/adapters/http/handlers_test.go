package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/partshub/api/internal/auth"
	"github.com/partshub/api/internal/clock"
	idemmemory "github.com/partshub/api/internal/idempotency/memory"
	"github.com/partshub/api/internal/kafka"
	"github.com/partshub/api/internal/orders/adapters/memory"
	"github.com/partshub/api/internal/orders/app"
	"github.com/partshub/api/internal/orders/domain"
	"github.com/partshub/api/internal/orders/metrics"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type stubPartsReader struct {
	parts map[string]domain.Part
}

func (s *stubPartsReader) GetByIDs(_ context.Context, ids []string) (map[string]domain.Part, error) {
	result := make(map[string]domain.Part)
	for _, id := range ids {
		if part, ok := s.parts[id]; ok {
			result[id] = part
		}
	}
	return result, nil
}

type testEnv struct {
	mux    *http.ServeMux
	repo   *memory.Repository
	tokens *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	delivery := testNow.Add(72 * time.Hour)
	parts := &stubPartsReader{parts: map[string]domain.Part{
		"part-1": {ID: "part-1", Name: "Brake pad", Price: decimal.NewFromInt(10), StockQuantity: 100},
		"part-2": {ID: "part-2", Name: "Oil filter", Price: decimal.NewFromInt(5), StockQuantity: 1, DateOfDelivery: &delivery},
		"part-3": {ID: "part-3", Name: "Spark plug", Price: decimal.NewFromInt(7), StockQuantity: 0},
	}}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	orderMetrics, err := metrics.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	repo := memory.NewRepository()
	service := app.NewService(
		repo,
		parts,
		kafka.NewNoopEventBus(),
		idemmemory.NewStore(),
		clock.NewFixed(testNow),
		slog.New(slog.DiscardHandler),
		orderMetrics,
	)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	mux := http.NewServeMux()
	NewHandler(service).Register(mux, tokens)

	return &testEnv{mux: mux, repo: repo, tokens: tokens}
}

func (e *testEnv) request(t *testing.T, method, path, userID, role string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		token, err := e.tokens.Issue(userID, role)
		if err != nil {
			t.Fatalf("failed to issue token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if method == http.MethodPost && path == "/v1/orders" {
		req.Header.Set("Idempotency-Key", "key-"+userID)
	}

	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeOrder(t *testing.T, rec *httptest.ResponseRecorder) domain.Order {
	t.Helper()
	var resp struct {
		Order domain.Order `json:"order"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Order
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{"items": []map[string]any{
		{"part_id": "part-1", "quantity": 2},
		{"part_id": "part-2", "quantity": 1},
	}}

	rec := env.request(t, http.MethodPost, "/v1/orders", "user-1", "user", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	order := decodeOrder(t, rec)
	if !order.TotalPrice.Equal(decimal.NewFromInt(25)) {
		t.Errorf("total price = %s, want 25", order.TotalPrice)
	}
	if order.EstimatedFulfillmentDays != 0 {
		t.Errorf("fulfillment days = %d, want 0", order.EstimatedFulfillmentDays)
	}
	if order.UserID != "user-1" {
		t.Errorf("user id = %q, want user-1", order.UserID)
	}
}

func TestCreateOrder_ReplaysIdempotentResponse(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{"items": []map[string]any{{"part_id": "part-1", "quantity": 1}}}

	first := env.request(t, http.MethodPost, "/v1/orders", "user-1", "user", body)
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d: %s", first.Code, first.Body.String())
	}

	second := env.request(t, http.MethodPost, "/v1/orders", "user-1", "user", body)
	if second.Code != http.StatusCreated {
		t.Fatalf("second status = %d: %s", second.Code, second.Body.String())
	}

	if first.Body.String() != second.Body.String() {
		t.Error("expected identical bodies for replayed request")
	}
	if decodeOrder(t, first).ID != decodeOrder(t, second).ID {
		t.Error("expected the same order on replay")
	}
}

func TestCreateOrder_MissingIdempotencyKey(t *testing.T) {
	env := newTestEnv(t)

	token, err := env.tokens.Issue("user-1", "user")
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	payload, _ := json.Marshal(map[string]any{"items": []map[string]any{{"part_id": "part-1", "quantity": 1}}})
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateOrder_Failures(t *testing.T) {
	tests := []struct {
		name       string
		items      []map[string]any
		wantStatus int
	}{
		{name: "no items", items: []map[string]any{}, wantStatus: http.StatusBadRequest},
		{name: "zero quantity", items: []map[string]any{{"part_id": "part-1", "quantity": 0}}, wantStatus: http.StatusBadRequest},
		{name: "unknown part", items: []map[string]any{{"part_id": "part-x", "quantity": 1}}, wantStatus: http.StatusBadRequest},
		{name: "out of stock without delivery date", items: []map[string]any{{"part_id": "part-3", "quantity": 1}}, wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.request(t, http.MethodPost, "/v1/orders", "user-1", "user", map[string]any{"items": tt.items})
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestCreateOrder_Unauthorized(t *testing.T) {
	env := newTestEnv(t)
	rec := env.request(t, http.MethodPost, "/v1/orders", "", "", map[string]any{"items": []map[string]any{}})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGetOrder_Access(t *testing.T) {
	env := newTestEnv(t)

	created := decodeOrder(t, env.request(t, http.MethodPost, "/v1/orders", "user-1", "user",
		map[string]any{"items": []map[string]any{{"part_id": "part-1", "quantity": 1}}}))

	tests := []struct {
		name       string
		userID     string
		role       string
		wantStatus int
	}{
		{name: "owner", userID: "user-1", role: "user", wantStatus: http.StatusOK},
		{name: "admin", userID: "admin-1", role: "admin", wantStatus: http.StatusOK},
		{name: "other user", userID: "user-2", role: "user", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.request(t, http.MethodGet, "/v1/orders/"+created.ID, tt.userID, tt.role, nil)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.request(t, http.MethodGet, "/v1/orders/missing", "user-1", "user", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestListMyOrders(t *testing.T) {
	env := newTestEnv(t)

	env.request(t, http.MethodPost, "/v1/orders", "user-1", "user",
		map[string]any{"items": []map[string]any{{"part_id": "part-1", "quantity": 1}}})

	rec := env.request(t, http.MethodGet, "/v1/orders/my", "user-1", "user", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Orders []domain.Order `json:"orders"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Orders) != 1 {
		t.Errorf("expected 1 order, got %d", len(resp.Orders))
	}

	t.Run("other user sees nothing", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/v1/orders/my", "user-2", "user", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var resp struct {
			Orders []domain.Order `json:"orders"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Orders) != 0 {
			t.Errorf("expected empty list, got %d orders", len(resp.Orders))
		}
	})
}

func TestPayOrder(t *testing.T) {
	env := newTestEnv(t)

	created := decodeOrder(t, env.request(t, http.MethodPost, "/v1/orders", "user-1", "user",
		map[string]any{"items": []map[string]any{{"part_id": "part-1", "quantity": 1}}}))

	rec := env.request(t, http.MethodPost, "/v1/orders/"+created.ID+"/pay", "user-1", "user", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if paid := decodeOrder(t, rec); paid.PaymentStatus != domain.PaymentCompleted {
		t.Errorf("payment status = %q, want completed", paid.PaymentStatus)
	}

	t.Run("second pay conflicts", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/v1/orders/"+created.ID+"/pay", "user-1", "user", nil)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})

	t.Run("admin cannot pay for another user", func(t *testing.T) {
		other := decodeOrder(t, env.request(t, http.MethodPost, "/v1/orders", "user-2", "user",
			map[string]any{"items": []map[string]any{{"part_id": "part-1", "quantity": 1}}}))

		rec := env.request(t, http.MethodPost, "/v1/orders/"+other.ID+"/pay", "admin-1", "admin", nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
		}
	})
}

func TestCancelOrder(t *testing.T) {
	env := newTestEnv(t)

	created := decodeOrder(t, env.request(t, http.MethodPost, "/v1/orders", "user-1", "user",
		map[string]any{"items": []map[string]any{{"part_id": "part-1", "quantity": 1}}}))

	rec := env.request(t, http.MethodDelete, "/v1/orders/"+created.ID, "user-1", "user", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	t.Run("second cancel conflicts", func(t *testing.T) {
		rec := env.request(t, http.MethodDelete, "/v1/orders/"+created.ID, "user-1", "user", nil)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})
}

func TestCancelOrder_AfterShipment(t *testing.T) {
	env := newTestEnv(t)

	created := decodeOrder(t, env.request(t, http.MethodPost, "/v1/orders", "user-1", "user",
		map[string]any{"items": []map[string]any{{"part_id": "part-1", "quantity": 1}}}))

	if err := env.repo.SetStatus(context.Background(), created.ID, domain.StatusShipped); err != nil {
		t.Fatalf("failed to ship order: %v", err)
	}

	rec := env.request(t, http.MethodDelete, "/v1/orders/"+created.ID, "user-1", "user", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
}
