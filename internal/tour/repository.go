package tour

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/redmonkez12/go-tours-api/internal/database"
	"github.com/redmonkez12/go-tours-api/internal/query"
)

var (
	ErrNotFound      = errors.New("tour not found")
	ErrDuplicateName = errors.New("a tour with that name already exists")
)

// haversineExpr computes the central angle in radians between the supplied
// point and a tour's start location. Argument order: lat, lat, lng.
// least() guards acos against floating point drift past 1.
const haversineExpr = `acos(least(1.0::double precision,
	sin(radians(?)) * sin(radians(start_lat)) +
	cos(radians(?)) * cos(radians(start_lat)) * cos(radians(start_lng) - radians(?))))`

// CreateInput carries the fields accepted when creating a tour
type CreateInput struct {
	Name          string
	Duration      int
	MaxGroupSize  int
	Difficulty    string
	Price         float64
	PriceDiscount *float64
	Summary       string
	Description   string
	ImageCover    string
	Images        []string
	StartDates    []time.Time
	Secret        bool
	StartLocation *Location
}

// UpdateInput carries a partial update; nil fields are left untouched
type UpdateInput struct {
	Name          *string
	Duration      *int
	MaxGroupSize  *int
	Difficulty    *string
	Price         *float64
	PriceDiscount *float64
	Summary       *string
	Description   *string
	ImageCover    *string
	Images        []string
	StartDates    []time.Time
	Secret        *bool
}

// Repository handles tour persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List returns non-secret tours with query features applied
func (r *Repository) List(ctx context.Context, features *query.Features) ([]*Tour, error) {
	var dbTours []*database.Tour
	q := r.db.NewSelect().
		Model(&dbTours).
		Where("secret = ?", false)

	err := features.Apply(q).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}

	tours := make([]*Tour, len(dbTours))
	for i, dbt := range dbTours {
		tours[i] = mapDBTourToModel(dbt)
	}
	return tours, nil
}

// GetByID retrieves one tour, populating its reviews
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Tour, error) {
	dbTour := new(database.Tour)
	err := r.db.NewSelect().
		Model(dbTour).
		Relation("Reviews").
		Relation("Reviews.User").
		Where("t.id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}

	return mapDBTourToModel(dbTour), nil
}

// Create inserts a new tour
func (r *Repository) Create(ctx context.Context, in *CreateInput) (*Tour, error) {
	dbTour := &database.Tour{
		Name:          in.Name,
		Slug:          slugify(in.Name),
		Duration:      in.Duration,
		MaxGroupSize:  in.MaxGroupSize,
		Difficulty:    in.Difficulty,
		Price:         in.Price,
		PriceDiscount: in.PriceDiscount,
		Summary:       in.Summary,
		Description:   in.Description,
		ImageCover:    in.ImageCover,
		Images:        in.Images,
		StartDates:    in.StartDates,
		Secret:        in.Secret,
	}
	if in.StartLocation != nil {
		dbTour.StartLat = &in.StartLocation.Lat
		dbTour.StartLng = &in.StartLocation.Lng
		dbTour.StartAddress = in.StartLocation.Address
		dbTour.StartDesc = in.StartLocation.Description
	}

	_, err := r.db.NewInsert().
		Model(dbTour).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to create tour: %w", err)
	}

	return mapDBTourToModel(dbTour), nil
}

// Update applies a partial update
func (r *Repository) Update(ctx context.Context, id uuid.UUID, in *UpdateInput) (*Tour, error) {
	dbTour := new(database.Tour)
	q := r.db.NewUpdate().
		Model(dbTour).
		Where("id = ?", id).
		Returning("*")

	if in.Name != nil {
		q = q.Set("name = ?", *in.Name).Set("slug = ?", slugify(*in.Name))
	}
	if in.Duration != nil {
		q = q.Set("duration = ?", *in.Duration)
	}
	if in.MaxGroupSize != nil {
		q = q.Set("max_group_size = ?", *in.MaxGroupSize)
	}
	if in.Difficulty != nil {
		q = q.Set("difficulty = ?", *in.Difficulty)
	}
	if in.Price != nil {
		q = q.Set("price = ?", *in.Price)
	}
	if in.PriceDiscount != nil {
		q = q.Set("price_discount = ?", *in.PriceDiscount)
	}
	if in.Summary != nil {
		q = q.Set("summary = ?", *in.Summary)
	}
	if in.Description != nil {
		q = q.Set("description = ?", *in.Description)
	}
	if in.ImageCover != nil {
		q = q.Set("image_cover = ?", *in.ImageCover)
	}
	if in.Images != nil {
		q = q.Set("images = ?", pgdialect.Array(in.Images))
	}
	if in.StartDates != nil {
		q = q.Set("start_dates = ?", pgdialect.Array(in.StartDates))
	}
	if in.Secret != nil {
		q = q.Set("secret = ?", *in.Secret)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to update tour: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBTourToModel(dbTour), nil
}

// Delete removes a tour
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Tour)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete tour: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Stats aggregates tour metrics per difficulty, over tours rated 2.5 or better
func (r *Repository) Stats(ctx context.Context) ([]*Stats, error) {
	var stats []*Stats
	err := r.db.NewSelect().
		Model((*database.Tour)(nil)).
		ColumnExpr("difficulty").
		ColumnExpr("count(*)::int AS num_tours").
		ColumnExpr("coalesce(sum(ratings_quantity), 0)::int AS num_ratings").
		ColumnExpr("coalesce(avg(ratings_average), 0) AS avg_rating").
		ColumnExpr("coalesce(avg(price), 0) AS avg_price").
		ColumnExpr("coalesce(min(price), 0) AS min_price").
		ColumnExpr("coalesce(max(price), 0) AS max_price").
		Where("ratings_average >= ?", 2.5).
		Group("difficulty").
		Scan(ctx, &stats)

	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tour stats: %w", err)
	}

	return stats, nil
}

// MonthlyPlan counts tour starts per month of the given year
func (r *Repository) MonthlyPlan(ctx context.Context, year int) ([]*MonthlyPlan, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var plan []*MonthlyPlan
	err := r.db.NewRaw(`
		SELECT EXTRACT(MONTH FROM d)::int AS month,
		       count(*)::int AS num_tour_starts,
		       array_agg(name ORDER BY name) AS tours
		FROM tours, unnest(start_dates) AS d
		WHERE d >= ? AND d < ? AND secret = FALSE
		GROUP BY month
		ORDER BY num_tour_starts DESC
	`, from, to).Scan(ctx, &plan)

	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly plan: %w", err)
	}

	return plan, nil
}

// Within returns non-secret tours whose start location lies inside the given
// radius, expressed in radians (central angle)
func (r *Repository) Within(ctx context.Context, lat, lng, radius float64) ([]*Tour, error) {
	var dbTours []*database.Tour
	err := r.db.NewSelect().
		Model(&dbTours).
		Where("secret = ?", false).
		Where("start_lat IS NOT NULL").
		Where(haversineExpr+" <= ?", lat, lat, lng, radius).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to query tours within radius: %w", err)
	}

	tours := make([]*Tour, len(dbTours))
	for i, dbt := range dbTours {
		tours[i] = mapDBTourToModel(dbt)
	}
	return tours, nil
}

// earthRadiusMeters scales the central angle into a linear distance
const earthRadiusMeters = 6371000.0

// Distances computes the distance from the given point to every located tour,
// scaled by the unit multiplier, nearest first
func (r *Repository) Distances(ctx context.Context, lat, lng, multiplier float64) ([]*Distance, error) {
	var distances []*Distance
	err := r.db.NewSelect().
		Model((*database.Tour)(nil)).
		ColumnExpr("id").
		ColumnExpr("name").
		ColumnExpr("? * "+haversineExpr+" * ? AS distance", earthRadiusMeters, lat, lat, lng, multiplier).
		Where("secret = ?", false).
		Where("start_lat IS NOT NULL").
		OrderExpr("distance ASC").
		Scan(ctx, &distances)

	if err != nil {
		return nil, fmt.Errorf("failed to compute tour distances: %w", err)
	}

	return distances, nil
}

// ListColumns exposes the queryable column mapping for the handler
func ListColumns() map[string]string {
	return listColumns
}

func slugify(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}
