package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-tours-api/internal/database"
	"github.com/redmonkez12/go-tours-api/internal/query"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// listColumns maps query-parameter names to user columns for the list endpoint.
var listColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
}

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. The role is always "user"; elevated roles are
// assigned out of band.
func (r *Repository) Create(ctx context.Context, name, email, passwordHash string) (*User, error) {
	dbUser := &database.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         string(RoleUser),
		Active:       true,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves an active user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Where("active = ?", true).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves an active user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Where("active = ?", true).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByResetToken retrieves the user holding the given reset token hash.
// Expiry is checked by the caller so an expired-but-matching token can be
// reported distinctly from an unknown one.
func (r *Repository) GetByResetToken(ctx context.Context, tokenHash string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("password_reset_token = ?", tokenHash).
		Where("active = ?", true).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// SetResetToken stores the reset token hash and its expiry on the user row.
// Only the reset columns are touched.
func (r *Repository) SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_reset_token = ?", tokenHash).
		Set("password_reset_expires = ?", expiresAt).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	return checkAffected(result)
}

// ClearResetToken removes any stored reset token hash and expiry
func (r *Repository) ClearResetToken(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_reset_token = ?", nil).
		Set("password_reset_expires = ?", nil).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}

	return checkAffected(result)
}

// UpdatePassword replaces the password hash and stamps password_changed_at,
// invalidating every session token issued before now.
func (r *Repository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("password_changed_at = NOW()").
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return checkAffected(result)
}

// UpdateProfile changes the self-serviceable fields (name, email)
func (r *Repository) UpdateProfile(ctx context.Context, userID uuid.UUID, name, email string) (*User, error) {
	dbUser := new(database.User)
	q := r.db.NewUpdate().
		Model(dbUser).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Where("active = ?", true).
		Returning("*")

	if name != "" {
		q = q.Set("name = ?", name)
	}
	if email != "" {
		q = q.Set("email = ?", email)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if err := checkAffected(result); err != nil {
		return nil, err
	}

	return mapDBUserToModel(dbUser), nil
}

// Deactivate soft-deletes a user; inactive users disappear from every lookup
func (r *Repository) Deactivate(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("active = ?", false).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}

	return checkAffected(result)
}

// List returns active users with query features applied
func (r *Repository) List(ctx context.Context, features *query.Features) ([]*User, error) {
	var dbUsers []*database.User
	q := r.db.NewSelect().
		Model(&dbUsers).
		Where("active = ?", true)

	err := features.Apply(q).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, len(dbUsers))
	for i, dbu := range dbUsers {
		users[i] = mapDBUserToModel(dbu)
	}
	return users, nil
}

// Update applies an admin-driven partial update to name, email or role
func (r *Repository) Update(ctx context.Context, userID uuid.UUID, name, email string, role *Role) (*User, error) {
	dbUser := new(database.User)
	q := r.db.NewUpdate().
		Model(dbUser).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Where("active = ?", true).
		Returning("*")

	if name != "" {
		q = q.Set("name = ?", name)
	}
	if email != "" {
		q = q.Set("email = ?", email)
	}
	if role != nil {
		q = q.Set("role = ?", string(*role))
	}

	result, err := q.Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if err := checkAffected(result); err != nil {
		return nil, err
	}

	return mapDBUserToModel(dbUser), nil
}

// Delete removes a user permanently (admin path)
func (r *Repository) Delete(ctx context.Context, userID uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return checkAffected(result)
}

// ListColumns exposes the queryable column mapping for the handler
func ListColumns() map[string]string {
	return listColumns
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	role, err := ParseRole(dbu.Role)
	if err != nil {
		// Unknown stored roles carry no permissions
		role = RoleUser
	}

	return &User{
		ID:                   dbu.ID,
		Name:                 dbu.Name,
		Email:                dbu.Email,
		Photo:                dbu.Photo,
		Role:                 role,
		PasswordHash:         dbu.PasswordHash,
		PasswordChangedAt:    dbu.PasswordChangedAt,
		PasswordResetToken:   dbu.PasswordResetToken,
		PasswordResetExpires: dbu.PasswordResetExpires,
		Active:               dbu.Active,
		CreatedAt:            dbu.CreatedAt,
		UpdatedAt:            dbu.UpdatedAt,
	}
}
