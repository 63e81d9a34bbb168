package review

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/go-tours-api/internal/auth"
	"github.com/redmonkez12/go-tours-api/internal/httputil"
	"github.com/redmonkez12/go-tours-api/internal/logging"
	"github.com/redmonkez12/go-tours-api/internal/query"
)

type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// CreateReviewRequest represents the review creation body. The tour id may
// come from the nested route instead, and the author is always the
// authenticated user.
type CreateReviewRequest struct {
	Review string     `json:"review"`
	Rating int        `json:"rating"`
	TourID *uuid.UUID `json:"tour"`
}

// UpdateReviewRequest represents a partial review update
type UpdateReviewRequest struct {
	Review *string `json:"review"`
	Rating *int    `json:"rating"`
}

// List handles GET /reviews and the nested GET /tours/{id}/reviews; on the
// nested route the {id} wildcard carries the tour id
// @Summary      List reviews
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope
// @Router       /api/v1/reviews [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var tourID *uuid.UUID
	if raw := chi.URLParam(r, "id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondError(w, "invalid tour id", http.StatusBadRequest)
			return
		}
		tourID = &id
	}

	features, err := query.Parse(r.URL.Query(), listColumns)
	if err != nil {
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	reviews, err := h.repo.List(r.Context(), tourID, features)
	if err != nil {
		logger.Error("failed to list reviews", "error", err.Error())
		httputil.RespondError(w, "failed to list reviews", http.StatusInternalServerError)
		return
	}

	httputil.RespondList(w, len(reviews), map[string]any{"reviews": reviews})
}

// Get handles GET /reviews/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "invalid review id", http.StatusBadRequest)
		return
	}

	rev, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "no review found with that ID", http.StatusNotFound)
			return
		}
		logger.Error("failed to get review", "error", err.Error())
		httputil.RespondError(w, "failed to get review", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, map[string]any{"review": rev}, http.StatusOK)
}

// Create handles POST /reviews and the nested POST /tours/{id}/reviews
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "please log in to get access", http.StatusUnauthorized)
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// The nested route wins over the body
	if raw := chi.URLParam(r, "id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondError(w, "invalid tour id", http.StatusBadRequest)
			return
		}
		req.TourID = &id
	}
	if req.TourID == nil {
		httputil.RespondError(w, "tour id is required", http.StatusBadRequest)
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		httputil.RespondError(w, "rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	rev, err := h.repo.Create(r.Context(), req.Review, req.Rating, *req.TourID, u.ID)
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("failed to create review", "error", err.Error())
		httputil.RespondError(w, "failed to create review", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, map[string]any{"review": rev}, http.StatusCreated)
}

// Update handles PATCH /reviews/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "invalid review id", http.StatusBadRequest)
		return
	}

	var req UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		httputil.RespondError(w, "rating must be between 1 and 5", http.StatusBadRequest)
		return
	}

	rev, err := h.repo.Update(r.Context(), id, req.Review, req.Rating)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "no review found with that ID", http.StatusNotFound)
			return
		}
		logger.Error("failed to update review", "error", err.Error())
		httputil.RespondError(w, "failed to update review", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, map[string]any{"review": rev}, http.StatusOK)
}

// Delete handles DELETE /reviews/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "invalid review id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "no review found with that ID", http.StatusNotFound)
			return
		}
		logger.Error("failed to delete review", "error", err.Error())
		httputil.RespondError(w, "failed to delete review", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
