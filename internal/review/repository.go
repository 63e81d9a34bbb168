package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-tours-api/internal/database"
	"github.com/redmonkez12/go-tours-api/internal/query"
)

var (
	ErrNotFound  = errors.New("review not found")
	ErrDuplicate = errors.New("you have already reviewed this tour")
)

// Repository handles review persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List returns reviews with query features applied; a non-nil tourID narrows
// the listing to one tour (the nested route).
func (r *Repository) List(ctx context.Context, tourID *uuid.UUID, features *query.Features) ([]*Review, error) {
	var dbReviews []*database.Review
	q := r.db.NewSelect().
		Model(&dbReviews).
		Relation("User")

	if tourID != nil {
		q = q.Where("tour_id = ?", *tourID)
	}

	err := features.Apply(q).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	reviews := make([]*Review, len(dbReviews))
	for i, dbr := range dbReviews {
		reviews[i] = MapDBReviewToModel(dbr)
	}
	return reviews, nil
}

// GetByID retrieves one review
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	dbReview := new(database.Review)
	err := r.db.NewSelect().
		Model(dbReview).
		Relation("User").
		Where("r.id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return MapDBReviewToModel(dbReview), nil
}

// Create inserts a review; the unique (tour_id, user_id) constraint keeps it
// to one per user per tour
func (r *Repository) Create(ctx context.Context, text string, rating int, tourID, userID uuid.UUID) (*Review, error) {
	dbReview := &database.Review{
		Review: text,
		Rating: rating,
		TourID: tourID,
		UserID: userID,
	}

	_, err := r.db.NewInsert().
		Model(dbReview).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return MapDBReviewToModel(dbReview), nil
}

// Update applies a partial update to the review text and rating
func (r *Repository) Update(ctx context.Context, id uuid.UUID, text *string, rating *int) (*Review, error) {
	dbReview := new(database.Review)
	q := r.db.NewUpdate().
		Model(dbReview).
		Where("id = ?", id).
		Returning("*")

	if text != nil {
		q = q.Set("review = ?", *text)
	}
	if rating != nil {
		q = q.Set("rating = ?", *rating)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return MapDBReviewToModel(dbReview), nil
}

// Delete removes a review
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Review)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
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

// ListColumns exposes the queryable column mapping for the handler
func ListColumns() map[string]string {
	return listColumns
}
