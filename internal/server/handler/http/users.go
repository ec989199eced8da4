package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tdnguyen/astroserve/internal/models"
	"github.com/tdnguyen/astroserve/internal/service"
	"go.uber.org/zap"
)

// UsersServicer defines the user management operations required by the
// HTTP handlers.
type UsersServicer interface {
	List(ctx context.Context) ([]models.Account, error)
	Get(ctx context.Context, id int64) (*models.Account, error)
	GetByPhone(ctx context.Context, phone string) (*models.Account, error)
	Create(ctx context.Context, req service.CreateRequest) (int64, error)
	Update(ctx context.Context, id int64, req service.UpdateRequest) error
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (*models.Statistics, error)
}

// UsersHandler handles the dashboard user management and statistics
// endpoints.
type UsersHandler struct {
	Service UsersServicer
	Log     *zap.Logger
}

// NewUsersHandler constructs a UsersHandler.
func NewUsersHandler(svc UsersServicer, log *zap.Logger) *UsersHandler {
	return &UsersHandler{Service: svc, Log: log}
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Service.List(r.Context())
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve users.")
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// Get handles GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id.")
		return
	}

	account, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve user.")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// GetByPhone handles GET /api/users/phone/{phone}.
func (h *UsersHandler) GetByPhone(w http.ResponseWriter, r *http.Request) {
	account, err := h.Service.GetByPhone(r.Context(), chi.URLParam(r, "phone"))
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve user.")
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Create handles POST /api/users. Duplicate phones answer 409 here,
// unlike public signup which answers 400.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	id, err := h.Service.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to create user.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"userId":  id,
	})
}

// Update handles PUT /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id.")
		return
	}

	var req service.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.Service.Update(r.Context(), id, req); err != nil {
		writeServiceError(w, h.Log, err, "Failed to update user.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User updated successfully"})
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id.")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.Log, err, "Failed to delete user.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

// Statistics handles GET /api/users/statistics.
func (h *UsersHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Statistics(r.Context())
	if err != nil {
		writeServiceError(w, h.Log, err, "Failed to retrieve statistics.")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
