package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/partshub/api/internal/auth"
	"github.com/partshub/api/internal/orders/app"
	"github.com/partshub/api/internal/orders/domain"
	"github.com/partshub/api/internal/orders/ports"
)

// Handler exposes HTTP endpoints for order operations. All routes require an
// authenticated caller.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the order handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux, tokens *auth.TokenManager) {
	mux.Handle("/v1/orders", auth.RequireAuth(http.HandlerFunc(h.handleOrders), tokens))
	mux.Handle("/v1/orders/", auth.RequireAuth(http.HandlerFunc(h.handleOrderByID), tokens))
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.createOrder(w, r)
}

func (h *Handler) handleOrderByID(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/orders/"), "/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if trimmed == "my" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.listMyOrders(w, r)
		return
	}

	if id, ok := strings.CutSuffix(trimmed, "/pay"); ok {
		if id == "" {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.payOrder(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getOrder(w, r, trimmed)
	case http.MethodDelete:
		h.cancelOrder(w, r, trimmed)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type createOrderRequest struct {
	Items []domain.LineItem `json:"items"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, _ := auth.IdentityFromContext(ctx)

	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey == "" {
		writeError(w, http.StatusBadRequest, "Idempotency-Key header required")
		return
	}

	// Keys are scoped per caller so one user cannot replay another's response.
	idemKey = identity.UserID + ":" + idemKey

	if stored, err := h.service.GetIdempotentResponse(ctx, idemKey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	} else if stored != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stored.StatusCode)
		_, _ = w.Write(stored.Body)
		return
	}

	var payload createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.CreateOrder(ctx, app.CreateOrderInput{
		UserID: identity.UserID,
		Items:  payload.Items,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	body, err := json.Marshal(map[string]any{"order": order})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stored := ports.StoredResponse{
		StatusCode: http.StatusCreated,
		Body:       body,
		OrderID:    order.ID,
	}

	if err := h.service.SaveIdempotentResponse(ctx, idemKey, stored); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, id string) {
	identity, _ := auth.IdentityFromContext(r.Context())

	order, err := h.service.GetOrder(r.Context(), id, identity.UserID, identity.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	orders, err := h.service.ListMyOrders(r.Context(), identity.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if orders == nil {
		orders = []domain.Order{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) payOrder(w http.ResponseWriter, r *http.Request, id string) {
	identity, _ := auth.IdentityFromContext(r.Context())

	order, err := h.service.PayOrder(r.Context(), id, identity.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request, id string) {
	identity, _ := auth.IdentityFromContext(r.Context())

	if err := h.service.CancelOrder(r.Context(), id, identity.UserID); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeDomainError maps order errors onto HTTP statuses: unknown orders are
// 404, access violations 403, state conflicts and stock shortages 409, and
// everything a client can fix 400.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrAlreadyShipped),
		errors.Is(err, domain.ErrOutOfStock):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNoLineItems),
		errors.Is(err, domain.ErrPartIDRequired),
		errors.Is(err, domain.ErrQuantityTooLow),
		errors.Is(err, domain.ErrUnknownParts):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
