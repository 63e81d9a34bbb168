package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/go-tours-api/internal/httputil"
	"github.com/redmonkez12/go-tours-api/internal/logging"
	"github.com/redmonkez12/go-tours-api/internal/query"
)

// currentUser matches auth.GetUserFromContext without importing the auth
// package; auth already depends on user.
type currentUser func(ctx context.Context) (*User, bool)

type Handler struct {
	repo        *Repository
	logger      *logging.Logger
	currentUser currentUser
}

func NewHandler(repo *Repository, logger *logging.Logger, resolve func(ctx context.Context) (*User, bool)) *Handler {
	return &Handler{repo: repo, logger: logger, currentUser: resolve}
}

// UpdateMeRequest represents the self-service profile update body. Password
// fields are deliberately absent; sending them is an error.
type UpdateMeRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// UpdateUserRequest represents the admin user update body
type UpdateUserRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Role  *string `json:"role"`
}

// GetMe handles GET /users/me
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Router       /api/v1/users/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(r.Context())
	if !ok {
		httputil.RespondError(w, "please log in to get access", http.StatusUnauthorized)
		return
	}

	httputil.RespondData(w, map[string]any{"user": u}, http.StatusOK)
}

// UpdateMe handles PATCH /users/update-me; password changes go through
// /users/update-my-password instead
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, ok := h.currentUser(r.Context())
	if !ok {
		httputil.RespondError(w, "please log in to get access", http.StatusUnauthorized)
		return
	}

	var req UpdateMeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Password != "" || req.PasswordConfirm != "" {
		httputil.RespondError(w, "this route is not for password updates, please use /update-my-password", http.StatusBadRequest)
		return
	}
	if req.Name == "" && req.Email == "" {
		httputil.RespondError(w, "nothing to update", http.StatusBadRequest)
		return
	}

	updated, err := h.repo.UpdateProfile(r.Context(), u.ID, req.Name, req.Email)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			httputil.RespondError(w, "email already exists", http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "user not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to update profile", "error", err.Error())
		httputil.RespondError(w, "failed to update profile", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, map[string]any{"user": updated}, http.StatusOK)
}

// DeleteMe handles DELETE /users/delete-me by deactivating the account
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, ok := h.currentUser(r.Context())
	if !ok {
		httputil.RespondError(w, "please log in to get access", http.StatusUnauthorized)
		return
	}

	if err := h.repo.Deactivate(r.Context(), u.ID); err != nil {
		logger.Error("failed to deactivate user", "error", err.Error())
		httputil.RespondError(w, "failed to delete account", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /users (admin)
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	features, err := query.Parse(r.URL.Query(), listColumns)
	if err != nil {
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	users, err := h.repo.List(r.Context(), features)
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondError(w, "failed to list users", http.StatusInternalServerError)
		return
	}

	httputil.RespondList(w, len(users), map[string]any{"users": users})
}

// Get handles GET /users/{id} (admin)
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	u, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "no user found with that ID", http.StatusNotFound)
			return
		}
		logger.Error("failed to get user", "error", err.Error())
		httputil.RespondError(w, "failed to get user", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, map[string]any{"user": u}, http.StatusOK)
}

// Update handles PATCH /users/{id} (admin)
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var role *Role
	if req.Role != nil {
		parsed, err := ParseRole(*req.Role)
		if err != nil {
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		role = &parsed
	}

	updated, err := h.repo.Update(r.Context(), id, req.Name, req.Email, role)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "no user found with that ID", http.StatusNotFound)
			return
		}
		logger.Error("failed to update user", "error", err.Error())
		httputil.RespondError(w, "failed to update user", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, map[string]any{"user": updated}, http.StatusOK)
}

// Delete handles DELETE /users/{id} (admin)
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "no user found with that ID", http.StatusNotFound)
			return
		}
		logger.Error("failed to delete user", "error", err.Error())
		httputil.RespondError(w, "failed to delete user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
