package tour

import (
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-tours-api/internal/database"
	"github.com/redmonkez12/go-tours-api/internal/review"
)

// Difficulty levels a tour can be created with; enforced by a check
// constraint on the table.
const (
	DifficultyEasy      = "easy"
	DifficultyMedium    = "medium"
	DifficultyDifficult = "difficult"
)

// Location is the starting point of a tour
type Location struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Address     string  `json:"address,omitempty"`
	Description string  `json:"description,omitempty"`
}

type Tour struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Slug           string           `json:"slug,omitempty"`
	Duration       int              `json:"duration"`
	MaxGroupSize   int              `json:"maxGroupSize"`
	Difficulty     string           `json:"difficulty"`
	RatingsAverage float64          `json:"ratingsAverage"`
	RatingsQty     int              `json:"ratingsQuantity"`
	Price          float64          `json:"price"`
	PriceDiscount  *float64         `json:"priceDiscount,omitempty"`
	Summary        string           `json:"summary"`
	Description    string           `json:"description,omitempty"`
	ImageCover     string           `json:"imageCover,omitempty"`
	Images         []string         `json:"images,omitempty"`
	StartDates     []time.Time      `json:"startDates,omitempty"`
	StartLocation  *Location        `json:"startLocation,omitempty"`
	Reviews        []*review.Review `json:"reviews,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// Stats is one row of the per-difficulty aggregation
type Stats struct {
	Difficulty string  `json:"difficulty" bun:"difficulty"`
	NumTours   int     `json:"numTours" bun:"num_tours"`
	NumRatings int     `json:"numRatings" bun:"num_ratings"`
	AvgRating  float64 `json:"avgRating" bun:"avg_rating"`
	AvgPrice   float64 `json:"avgPrice" bun:"avg_price"`
	MinPrice   float64 `json:"minPrice" bun:"min_price"`
	MaxPrice   float64 `json:"maxPrice" bun:"max_price"`
}

// MonthlyPlan is one row of the per-month start-date aggregation
type MonthlyPlan struct {
	Month         int      `json:"month" bun:"month"`
	NumTourStarts int      `json:"numTourStarts" bun:"num_tour_starts"`
	Tours         []string `json:"tours" bun:"tours,array"`
}

// Distance is one row of the distances-from-point aggregation
type Distance struct {
	ID       uuid.UUID `json:"id" bun:"id"`
	Name     string    `json:"name" bun:"name"`
	Distance float64   `json:"distance" bun:"distance"`
}

// listColumns maps query-parameter names to tour columns for list endpoints.
var listColumns = map[string]string{
	"name":            "name",
	"duration":        "duration",
	"maxGroupSize":    "max_group_size",
	"difficulty":      "difficulty",
	"ratingsAverage":  "ratings_average",
	"ratingsQuantity": "ratings_quantity",
	"price":           "price",
	"summary":         "summary",
	"createdAt":       "created_at",
}

func mapDBTourToModel(dbt *database.Tour) *Tour {
	t := &Tour{
		ID:             dbt.ID,
		Name:           dbt.Name,
		Slug:           dbt.Slug,
		Duration:       dbt.Duration,
		MaxGroupSize:   dbt.MaxGroupSize,
		Difficulty:     dbt.Difficulty,
		RatingsAverage: dbt.RatingsAverage,
		RatingsQty:     dbt.RatingsQty,
		Price:          dbt.Price,
		PriceDiscount:  dbt.PriceDiscount,
		Summary:        dbt.Summary,
		Description:    dbt.Description,
		ImageCover:     dbt.ImageCover,
		Images:         dbt.Images,
		StartDates:     dbt.StartDates,
		CreatedAt:      dbt.CreatedAt,
	}

	if dbt.StartLat != nil && dbt.StartLng != nil {
		t.StartLocation = &Location{
			Lat:         *dbt.StartLat,
			Lng:         *dbt.StartLng,
			Address:     dbt.StartAddress,
			Description: dbt.StartDesc,
		}
	}

	for _, dbr := range dbt.Reviews {
		t.Reviews = append(t.Reviews, review.MapDBReviewToModel(dbr))
	}

	return t
}
