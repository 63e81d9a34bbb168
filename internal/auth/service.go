package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-tours-api/internal/logging"
	"github.com/redmonkez12/go-tours-api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrNameRequired       = errors.New("name is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrResetTokenInvalid  = errors.New("reset token is invalid or has expired")
	ErrMailDelivery       = errors.New("failed to send password reset email")
)

// resetTokenTTL is the window in which an emailed reset token stays usable
const resetTokenTTL = 10 * time.Minute

// Service handles the authentication lifecycle: signup, login, password
// reset via emailed tokens, and authenticated password changes.
type Service struct {
	users         UserStore
	mailer        Mailer
	tokens        TokenService
	logger        *logging.Logger
	tokenDuration time.Duration
}

func NewService(users UserStore, mailer Mailer, tokens TokenService, logger *logging.Logger, tokenDuration time.Duration) *Service {
	return &Service{
		users:         users,
		mailer:        mailer,
		tokens:        tokens,
		logger:        logger,
		tokenDuration: tokenDuration,
	}
}

// Signup creates a new account and logs it in. The role is always "user";
// the payload cannot grant itself permissions.
func (s *Service) Signup(ctx context.Context, name, email, password, passwordConfirm string) (*user.User, string, error) {
	if name == "" {
		return nil, "", ErrNameRequired
	}
	if err := validateEmail(email); err != nil {
		return nil, "", err
	}
	if err := validatePassword(password, passwordConfirm); err != nil {
		return nil, "", err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, name, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, "", user.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(newUser.ID)
	if err != nil {
		return nil, "", err
	}

	return newUser, token, nil
}

// Login authenticates by email and password and returns a fresh session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !verifyPassword(existing.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(existing.ID)
	if err != nil {
		return nil, "", err
	}

	return existing, token, nil
}

// ForgotPassword generates a one-time reset token, stores only its hash with
// a 10-minute expiry, and emails the plaintext. If the email cannot be sent
// the stored hash and expiry are cleared before the error is returned, so a
// failed request never leaves dangling reset state.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	plaintext, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := time.Now().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, existing.ID, hashResetToken(plaintext), expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if sendErr := s.mailer.SendPasswordResetEmail(ctx, existing.Email, plaintext); sendErr != nil {
		if clearErr := s.users.ClearResetToken(ctx, existing.ID); clearErr != nil {
			s.logger.Error("failed to clear reset token after send failure",
				"user_id", existing.ID, "error", clearErr.Error())
		}
		return fmt.Errorf("%w: %s", ErrMailDelivery, sendErr)
	}

	return nil
}

// ResetPassword consumes a reset token: the provided plaintext is hashed with
// the same one-way function and must match an unexpired stored hash. On
// success the password is replaced, the reset state cleared, and a fresh
// session token issued.
func (s *Service) ResetPassword(ctx context.Context, plaintext, password, passwordConfirm string) (*user.User, string, error) {
	if err := validatePassword(password, passwordConfirm); err != nil {
		return nil, "", err
	}

	existing, err := s.users.GetByResetToken(ctx, hashResetToken(plaintext))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrResetTokenInvalid
		}
		return nil, "", fmt.Errorf("failed to get user by reset token: %w", err)
	}

	// A matching hash past its expiry is as invalid as an unknown one
	if existing.PasswordResetExpires == nil || time.Now().After(*existing.PasswordResetExpires) {
		return nil, "", ErrResetTokenInvalid
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, existing.ID, passwordHash); err != nil {
		return nil, "", fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.users.ClearResetToken(ctx, existing.ID); err != nil {
		return nil, "", fmt.Errorf("failed to clear reset token: %w", err)
	}

	token, err := s.issueToken(existing.ID)
	if err != nil {
		return nil, "", err
	}

	return existing, token, nil
}

// UpdatePassword changes the password of an authenticated user after
// re-verifying the current one, and reissues the session token.
func (s *Service) UpdatePassword(ctx context.Context, u *user.User, current, password, passwordConfirm string) (string, error) {
	if !verifyPassword(u.PasswordHash, current) {
		return "", ErrInvalidCredentials
	}
	if err := validatePassword(password, passwordConfirm); err != nil {
		return "", err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, u.ID, passwordHash); err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}

	return s.issueToken(u.ID)
}

func (s *Service) issueToken(userID uuid.UUID) (string, error) {
	token, err := s.tokens.CreateToken(userID, s.tokenDuration)
	if err != nil {
		return "", fmt.Errorf("failed to create session token: %w", err)
	}
	return token, nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 {
		return ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmailFormat
	}
	return nil
}

func validatePassword(password, passwordConfirm string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if password != passwordConfirm {
		return ErrPasswordMismatch
	}
	return nil
}
