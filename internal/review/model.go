package review

import (
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-tours-api/internal/database"
)

type Review struct {
	ID        uuid.UUID `json:"id"`
	Review    string    `json:"review"`
	Rating    int       `json:"rating"`
	TourID    uuid.UUID `json:"tour"`
	UserID    uuid.UUID `json:"user"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// listColumns maps query-parameter names to review columns.
var listColumns = map[string]string{
	"rating":    "rating",
	"createdAt": "created_at",
}

// MapDBReviewToModel converts the table model to the domain model. Exported
// because populated tours carry their reviews.
func MapDBReviewToModel(dbr *database.Review) *Review {
	r := &Review{
		ID:        dbr.ID,
		Review:    dbr.Review,
		Rating:    dbr.Rating,
		TourID:    dbr.TourID,
		UserID:    dbr.UserID,
		CreatedAt: dbr.CreatedAt,
	}
	if dbr.User != nil {
		r.Author = dbr.User.Name
	}
	return r
}
