package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/partshub/api/internal/auth"
	"github.com/partshub/api/internal/users/app"
	"github.com/partshub/api/internal/users/domain"
)

// Handler exposes the auth endpoints, self-service profile management and
// the administrator's user CRUD.
type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the user handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux, tokens *auth.TokenManager) {
	mux.HandleFunc("/v1/auth/register", h.register)
	mux.HandleFunc("/v1/auth/login", h.login)
	mux.Handle("/v1/users/me", auth.RequireAuth(http.HandlerFunc(h.handleMe), tokens))
	// Kept for clients of the pre-v1 API surface.
	mux.Handle("/v1/auth/me", auth.RequireAuth(http.HandlerFunc(h.handleMe), tokens))
	mux.Handle("/v1/admin/users", auth.RequireAuth(auth.RequireAdmin(http.HandlerFunc(h.handleAdminUsers)), tokens))
	mux.Handle("/v1/admin/users/", auth.RequireAuth(auth.RequireAdmin(http.HandlerFunc(h.handleAdminUserByID)), tokens))
}

type addressPayload struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

func (p *addressPayload) toDomain() *domain.Address {
	if p == nil {
		return nil
	}
	return &domain.Address{Street: p.Street, Suite: p.Suite, City: p.City, Zipcode: p.Zipcode}
}

type registerRequest struct {
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	Email       string          `json:"email"`
	Password    string          `json:"password"`
	CompanyName string          `json:"company_name"`
	NIP         string          `json:"nip"`
	Address     *addressPayload `json:"address"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, token, err := h.service.Register(r.Context(), app.RegisterInput{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		Email:       payload.Email,
		Password:    payload.Password,
		CompanyName: payload.CompanyName,
		NIP:         payload.NIP,
		Address:     payload.Address.toDomain(),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"token": token, "user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, token, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		user, err := h.service.GetUser(r.Context(), identity.UserID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	case http.MethodPatch:
		var payload profilePatchRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		user, err := h.service.UpdateProfile(r.Context(), identity.UserID, payload.toPatch())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type profilePatchRequest struct {
	FirstName   *string         `json:"first_name"`
	LastName    *string         `json:"last_name"`
	CompanyName *string         `json:"company_name"`
	NIP         *string         `json:"nip"`
	Address     *addressPayload `json:"address"`
}

func (p profilePatchRequest) toPatch() domain.Patch {
	return domain.Patch{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		CompanyName: p.CompanyName,
		NIP:         p.NIP,
		Address:     p.Address.toDomain(),
	}
}

func (h *Handler) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := h.service.ListUsers(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if users == nil {
			users = []domain.User{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	case http.MethodPost:
		h.createUser(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type adminCreateUserRequest struct {
	registerRequest
	Role string `json:"role"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var payload adminCreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, err := h.service.CreateUser(r.Context(), app.CreateUserInput{
		RegisterInput: app.RegisterInput{
			FirstName:   payload.FirstName,
			LastName:    payload.LastName,
			Email:       payload.Email,
			Password:    payload.Password,
			CompanyName: payload.CompanyName,
			NIP:         payload.NIP,
			Address:     payload.Address.toDomain(),
		},
		Role: payload.Role,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (h *Handler) handleAdminUserByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/admin/users/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := h.service.GetUser(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	case http.MethodPatch:
		h.updateUser(w, r, id)
	case http.MethodDelete:
		if err := h.service.DeleteUser(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type adminPatchRequest struct {
	profilePatchRequest
	Role *string `json:"role"`
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, id string) {
	var payload adminPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	patch := domain.AdminPatch{Patch: payload.toPatch()}
	if payload.Role != nil {
		role := domain.Role(*payload.Role)
		patch.Role = &role
	}

	user, err := h.service.UpdateUser(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrFirstNameRequired),
		errors.Is(err, domain.ErrLastNameRequired),
		errors.Is(err, domain.ErrEmailRequired),
		errors.Is(err, domain.ErrPasswordRequired),
		errors.Is(err, domain.ErrAddressRequired),
		errors.Is(err, domain.ErrInvalidNIP),
		errors.Is(err, domain.ErrInvalidRole):
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
