package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the bun table model backing internal/user.
// The password hash and reset token columns never leave the persistence layer
// unmapped; the domain model controls what is serialized.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                   uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name                 string     `bun:"name,notnull"`
	Email                string     `bun:"email,notnull,unique"`
	Photo                string     `bun:"photo,nullzero"`
	Role                 string     `bun:"role,notnull,default:'user'"`
	PasswordHash         string     `bun:"password_hash,notnull"`
	PasswordChangedAt    *time.Time `bun:"password_changed_at"`
	PasswordResetToken   *string    `bun:"password_reset_token"`
	PasswordResetExpires *time.Time `bun:"password_reset_expires"`
	Active               bool       `bun:"active,notnull,default:true"`
	CreatedAt            time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt            time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Tour is the bun table model backing internal/tour.
type Tour struct {
	bun.BaseModel `bun:"table:tours,alias:t"`

	ID             uuid.UUID   `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Name           string      `bun:"name,notnull,unique"`
	Slug           string      `bun:"slug,nullzero"`
	Duration       int         `bun:"duration,notnull"`
	MaxGroupSize   int         `bun:"max_group_size,notnull"`
	Difficulty     string      `bun:"difficulty,notnull"`
	RatingsAverage float64     `bun:"ratings_average,notnull,default:4.5"`
	RatingsQty     int         `bun:"ratings_quantity,notnull,default:0"`
	Price          float64     `bun:"price,notnull"`
	PriceDiscount  *float64    `bun:"price_discount"`
	Summary        string      `bun:"summary,notnull"`
	Description    string      `bun:"description,nullzero"`
	ImageCover     string      `bun:"image_cover,nullzero"`
	Images         []string    `bun:"images,array"`
	StartDates     []time.Time `bun:"start_dates,array"`
	Secret         bool        `bun:"secret,notnull,default:false"`
	StartLat       *float64    `bun:"start_lat"`
	StartLng       *float64    `bun:"start_lng"`
	StartAddress   string      `bun:"start_address,nullzero"`
	StartDesc      string      `bun:"start_description,nullzero"`
	CreatedAt      time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Reviews []*Review `bun:"rel:has-many,join:id=tour_id"`
}

// Review is the bun table model backing internal/review.
// A (tour_id, user_id) unique constraint keeps reviews to one per user per tour.
type Review struct {
	bun.BaseModel `bun:"table:reviews,alias:r"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Review    string    `bun:"review,notnull"`
	Rating    int       `bun:"rating,notnull"`
	TourID    uuid.UUID `bun:"tour_id,notnull,type:uuid"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Tour *Tour `bun:"rel:belongs-to,join:tour_id=id"`
	User *User `bun:"rel:belongs-to,join:user_id=id"`
}
