package tour

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/go-tours-api/internal/httputil"
	"github.com/redmonkez12/go-tours-api/internal/logging"
	"github.com/redmonkez12/go-tours-api/internal/query"
)

// Radius of the earth used to convert linear distances into central angles.
const (
	earthRadiusMiles = 3963.2
	earthRadiusKm    = 6378.1
)

// Multipliers from meters into the requested unit.
const (
	metersToMiles = 0.000621371
	metersToKm    = 0.001
)

type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// TourRequest represents the tour creation body
type TourRequest struct {
	Name          string      `json:"name"`
	Duration      int         `json:"duration"`
	MaxGroupSize  int         `json:"maxGroupSize"`
	Difficulty    string      `json:"difficulty"`
	Price         float64     `json:"price"`
	PriceDiscount *float64    `json:"priceDiscount"`
	Summary       string      `json:"summary"`
	Description   string      `json:"description"`
	ImageCover    string      `json:"imageCover"`
	Images        []string    `json:"images"`
	StartDates    []time.Time `json:"startDates"`
	Secret        bool        `json:"secret"`
	StartLocation *Location   `json:"startLocation"`
}

// UpdateTourRequest represents a partial tour update
type UpdateTourRequest struct {
	Name          *string     `json:"name"`
	Duration      *int        `json:"duration"`
	MaxGroupSize  *int        `json:"maxGroupSize"`
	Difficulty    *string     `json:"difficulty"`
	Price         *float64    `json:"price"`
	PriceDiscount *float64    `json:"priceDiscount"`
	Summary       *string     `json:"summary"`
	Description   *string     `json:"description"`
	ImageCover    *string     `json:"imageCover"`
	Images        []string    `json:"images"`
	StartDates    []time.Time `json:"startDates"`
	Secret        *bool       `json:"secret"`
}

// List handles GET /tours with filtering, sorting, projection and pagination
// @Summary      List tours
// @Description  List tours; supports field[gte|gt|lte|lt] filters, sort, fields and page/limit
// @Tags         tours
// @Produce      json
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.ErrorEnvelope
// @Router       /api/v1/tours [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	features, err := query.Parse(r.URL.Query(), listColumns)
	if err != nil {
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tours, err := h.repo.List(r.Context(), features)
	if err != nil {
		logger.Error("failed to list tours", "error", err.Error())
		httputil.RespondError(w, "failed to list tours", http.StatusInternalServerError)
		return
	}

	httputil.RespondList(w, len(tours), map[string]any{"tours": tours})
}

// TopTours is the alias route: the five cheapest tours, best rated first
// among equals, trimmed to the headline fields
func (h *Handler) TopTours(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Set("limit", "5")
	q.Set("sort", "price,-ratingsAverage")
	q.Set("fields", "name,price,ratingsAverage,summary,difficulty")
	r.URL.RawQuery = q.Encode()

	h.List(w, r)
}

// Get handles GET /tours/{id}; the tour's reviews ride along
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "invalid tour id", http.StatusBadRequest)
		return
	}

	t, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "no tour found with that ID", http.StatusNotFound)
			return
		}
		logger.Error("failed to get tour", "error", err.Error())
		httputil.RespondError(w, "failed to get tour", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, map[string]any{"tour": t}, http.StatusOK)
}

// Create handles POST /tours
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req TourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.repo.Create(r.Context(), &CreateInput{
		Name:          req.Name,
		Duration:      req.Duration,
		MaxGroupSize:  req.MaxGroupSize,
		Difficulty:    req.Difficulty,
		Price:         req.Price,
		PriceDiscount: req.PriceDiscount,
		Summary:       req.Summary,
		Description:   req.Description,
		ImageCover:    req.ImageCover,
		Images:        req.Images,
		StartDates:    req.StartDates,
		Secret:        req.Secret,
		StartLocation: req.StartLocation,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateName) {
			httputil.RespondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("failed to create tour", "error", err.Error())
		httputil.RespondError(w, "failed to create tour", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, map[string]any{"tour": t}, http.StatusCreated)
}

// Update handles PATCH /tours/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "invalid tour id", http.StatusBadRequest)
		return
	}

	var req UpdateTourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	t, err := h.repo.Update(r.Context(), id, &UpdateInput{
		Name:          req.Name,
		Duration:      req.Duration,
		MaxGroupSize:  req.MaxGroupSize,
		Difficulty:    req.Difficulty,
		Price:         req.Price,
		PriceDiscount: req.PriceDiscount,
		Summary:       req.Summary,
		Description:   req.Description,
		ImageCover:    req.ImageCover,
		Images:        req.Images,
		StartDates:    req.StartDates,
		Secret:        req.Secret,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "no tour found with that ID", http.StatusNotFound)
			return
		}
		logger.Error("failed to update tour", "error", err.Error())
		httputil.RespondError(w, "failed to update tour", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, map[string]any{"tour": t}, http.StatusOK)
}

// Delete handles DELETE /tours/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondError(w, "invalid tour id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "no tour found with that ID", http.StatusNotFound)
			return
		}
		logger.Error("failed to delete tour", "error", err.Error())
		httputil.RespondError(w, "failed to delete tour", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /tours/tour-stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	stats, err := h.repo.Stats(r.Context())
	if err != nil {
		logger.Error("failed to aggregate tour stats", "error", err.Error())
		httputil.RespondError(w, "failed to aggregate tour stats", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, map[string]any{"stats": stats}, http.StatusOK)
}

// MonthlyPlan handles GET /tours/monthly-plan/{year}
func (h *Handler) MonthlyPlan(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		httputil.RespondError(w, "invalid year", http.StatusBadRequest)
		return
	}

	plan, err := h.repo.MonthlyPlan(r.Context(), year)
	if err != nil {
		logger.Error("failed to aggregate monthly plan", "error", err.Error())
		httputil.RespondError(w, "failed to aggregate monthly plan", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, map[string]any{"plan": plan}, http.StatusOK)
}

// ToursWithin handles GET /tours/tours-within/{distance}/center/{latlng}/unit/{unit}
// Malformed coordinates fail before any query is made.
func (h *Handler) ToursWithin(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	distance, err := strconv.ParseFloat(chi.URLParam(r, "distance"), 64)
	if err != nil || distance < 0 {
		httputil.RespondError(w, "invalid distance", http.StatusBadRequest)
		return
	}

	lat, lng, err := parseLatLng(chi.URLParam(r, "latlng"))
	if err != nil {
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	radius := angularRadius(distance, chi.URLParam(r, "unit"))

	tours, err := h.repo.Within(r.Context(), lat, lng, radius)
	if err != nil {
		logger.Error("failed to query tours within radius", "error", err.Error())
		httputil.RespondError(w, "failed to query tours", http.StatusInternalServerError)
		return
	}

	httputil.RespondList(w, len(tours), map[string]any{"tours": tours})
}

// Distances handles GET /tours/distances/{latlng}/unit/{unit}
func (h *Handler) Distances(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	lat, lng, err := parseLatLng(chi.URLParam(r, "latlng"))
	if err != nil {
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	distances, err := h.repo.Distances(r.Context(), lat, lng, distanceMultiplier(chi.URLParam(r, "unit")))
	if err != nil {
		logger.Error("failed to compute tour distances", "error", err.Error())
		httputil.RespondError(w, "failed to compute distances", http.StatusInternalServerError)
		return
	}

	httputil.RespondData(w, map[string]any{"distances": distances}, http.StatusOK)
}

// parseLatLng splits a "lat,lng" pair and validates the coordinate ranges
func parseLatLng(s string) (lat, lng float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("please provide latitude and longitude in the format lat,lng")
	}

	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude %q", parts[1])
	}

	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("latitude or longitude out of range")
	}

	return lat, lng, nil
}

// angularRadius converts a linear distance into radians; unrecognized units
// fall back to kilometers
func angularRadius(distance float64, unit string) float64 {
	if unit == "mi" {
		return distance / earthRadiusMiles
	}
	return distance / earthRadiusKm
}

// distanceMultiplier scales meters into the requested unit
func distanceMultiplier(unit string) float64 {
	if unit == "mi" {
		return metersToMiles
	}
	return metersToKm
}
