package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/partshub/api/internal/auth"
	"github.com/partshub/api/internal/catalog/app"
	"github.com/partshub/api/internal/catalog/domain"
	"github.com/partshub/api/internal/catalog/ports"
)

// Handler exposes HTTP endpoints for the parts catalog. Reads are public;
// writes require the administrator role.
type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the catalog handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux, tokens *auth.TokenManager) {
	admin := func(fn http.HandlerFunc) http.Handler {
		return auth.RequireAuth(auth.RequireAdmin(fn), tokens)
	}

	mux.HandleFunc("/v1/parts", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.listParts(w, r)
		case http.MethodPost:
			admin(h.createPart).ServeHTTP(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})

	mux.HandleFunc("/v1/parts/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/parts/"), "/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "part not found")
			return
		}

		switch r.Method {
		case http.MethodGet:
			h.getPart(w, r, id)
		case http.MethodPatch:
			admin(func(w http.ResponseWriter, r *http.Request) {
				h.updatePart(w, r, id)
			}).ServeHTTP(w, r)
		case http.MethodDelete:
			admin(func(w http.ResponseWriter, r *http.Request) {
				h.deletePart(w, r, id)
			}).ServeHTTP(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	})
}

type createPartRequest struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	StockQuantity  int             `json:"stock_quantity"`
	DateOfDelivery *time.Time      `json:"date_of_delivery"`
}

func (h *Handler) createPart(w http.ResponseWriter, r *http.Request) {
	var payload createPartRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	part, err := h.service.CreatePart(r.Context(), app.CreatePartInput{
		Name:           payload.Name,
		Description:    payload.Description,
		Price:          payload.Price,
		StockQuantity:  payload.StockQuantity,
		DateOfDelivery: payload.DateOfDelivery,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"part": part})
}

func (h *Handler) getPart(w http.ResponseWriter, r *http.Request, id string) {
	part, err := h.service.GetPart(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"part": part})
}

func (h *Handler) listParts(w http.ResponseWriter, r *http.Request) {
	filter := ports.ListFilter{NameQuery: r.URL.Query().Get("name")}

	if raw := r.URL.Query().Get("min_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_price")
			return
		}
		filter.MinPrice = &price
	}
	if raw := r.URL.Query().Get("max_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid max_price")
			return
		}
		filter.MaxPrice = &price
	}

	parts, err := h.service.ListParts(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if parts == nil {
		parts = []domain.Part{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"parts": parts})
}

type updatePartRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	StockQuantity  *int             `json:"stock_quantity"`
	DateOfDelivery *time.Time       `json:"date_of_delivery"`
}

func (h *Handler) updatePart(w http.ResponseWriter, r *http.Request, id string) {
	var payload updatePartRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	part, err := h.service.UpdatePart(r.Context(), id, domain.Patch{
		Name:           payload.Name,
		Description:    payload.Description,
		Price:          payload.Price,
		StockQuantity:  payload.StockQuantity,
		DateOfDelivery: payload.DateOfDelivery,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"part": part})
}

func (h *Handler) deletePart(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.DeletePart(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "part not found")
	case errors.Is(err, domain.ErrNameRequired),
		errors.Is(err, domain.ErrNegativePrice),
		errors.Is(err, domain.ErrNegativeStock):
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
