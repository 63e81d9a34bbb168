package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/go-tours-api/internal/httputil"
	"github.com/redmonkez12/go-tours-api/internal/logging"
	"github.com/redmonkez12/go-tours-api/internal/user"
)

// Handler contains HTTP handlers for the authentication endpoints
type Handler struct {
	service        *Service
	rateLimiter    RateLimiter
	logger         *logging.Logger
	isProduction   bool
	cookieDuration time.Duration
}

func NewHandler(service *Service, rateLimiter RateLimiter, logger *logging.Logger, isProduction bool, cookieDuration time.Duration) *Handler {
	return &Handler{
		service:        service,
		rateLimiter:    rateLimiter,
		logger:         logger,
		isProduction:   isProduction,
		cookieDuration: cookieDuration,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest represents the password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the password reset completion body;
// the reset token itself travels in the URL
type ResetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// UpdatePasswordRequest represents the authenticated password change body
type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Signup handles account creation
// @Summary      Sign up
// @Description  Create a new account and receive a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup payload"
// @Success      201 {object} httputil.Envelope
// @Failure      400 {object} httputil.ErrorEnvelope
// @Router       /api/v1/users/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitByIP(w, r, "signup") {
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	newUser, token, err := h.service.Signup(r.Context(), req.Name, req.Email, req.Password, req.PasswordConfirm)
	if err != nil {
		h.respondServiceError(w, logger, "signup", err)
		return
	}

	logger.Info("user signed up", "user_id", newUser.ID)

	SetSessionCookie(w, token, h.cookieDuration, h.isProduction)
	httputil.RespondToken(w, token, map[string]any{"user": newUser}, http.StatusCreated)
}

// Login handles user login
// @Summary      Log in
// @Description  Authenticate with email and password and receive a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} httputil.Envelope
// @Failure      401 {object} httputil.ErrorEnvelope
// @Router       /api/v1/users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitByIP(w, r, "login") {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	existing, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(w, logger, "login", err)
		return
	}

	logger.Info("user logged in", "user_id", existing.ID)

	SetSessionCookie(w, token, h.cookieDuration, h.isProduction)
	httputil.RespondToken(w, token, map[string]any{"user": existing}, http.StatusOK)
}

// Logout clears the session cookie
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200 {object} httputil.Envelope
// @Router       /api/v1/users/logout [get]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w)
	httputil.RespondData(w, nil, http.StatusOK)
}

// ForgotPassword starts the password reset flow
// @Summary      Request password reset
// @Description  Email a one-time reset token to the account's address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Email address"
// @Success      200 {object} httputil.Envelope
// @Failure      404 {object} httputil.ErrorEnvelope
// @Failure      429 {object} httputil.ErrorEnvelope
// @Router       /api/v1/users/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid forgot password request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if h.limitByIP(w, r, "forgot-password") {
		return
	}

	// Per-address cooldown between reset emails
	onCooldown, err := h.rateLimiter.CheckEmailCooldown(r.Context(), req.Email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
	} else if onCooldown {
		logger.Warn("email on cooldown")
		httputil.RespondError(w, "please wait before requesting another reset", http.StatusTooManyRequests)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		h.respondServiceError(w, logger, "forgot password", err)
		return
	}

	// The cooldown starts only once a reset email actually went out; a
	// failed attempt must not delay the retry
	if err := h.rateLimiter.SetEmailCooldown(r.Context(), req.Email); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}

	httputil.RespondData(w, map[string]string{"message": "token sent to email"}, http.StatusOK)
}

// ResetPassword completes the reset flow with the emailed token
// @Summary      Reset password
// @Description  Set a new password using a valid reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token path string true "Reset token"
// @Param        request body ResetPasswordRequest true "New password"
// @Success      200 {object} httputil.Envelope
// @Failure      400 {object} httputil.ErrorEnvelope
// @Router       /api/v1/users/reset-password/{token} [patch]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token := chi.URLParam(r, "token")
	if token == "" {
		httputil.RespondError(w, "reset token required", http.StatusBadRequest)
		return
	}

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset password request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	existing, sessionToken, err := h.service.ResetPassword(r.Context(), token, req.Password, req.PasswordConfirm)
	if err != nil {
		h.respondServiceError(w, logger, "reset password", err)
		return
	}

	logger.Info("password reset", "user_id", existing.ID)

	SetSessionCookie(w, sessionToken, h.cookieDuration, h.isProduction)
	httputil.RespondToken(w, sessionToken, map[string]any{"user": existing}, http.StatusOK)
}

// UpdatePassword changes the password of the authenticated user
// @Summary      Update password
// @Description  Change the current user's password after re-verifying it
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdatePasswordRequest true "Password change payload"
// @Success      200 {object} httputil.Envelope
// @Failure      401 {object} httputil.ErrorEnvelope
// @Router       /api/v1/users/update-my-password [patch]
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	u, ok := GetUserFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "please log in to get access", http.StatusUnauthorized)
		return
	}

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update password request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.service.UpdatePassword(r.Context(), u, req.PasswordCurrent, req.Password, req.PasswordConfirm)
	if err != nil {
		h.respondServiceError(w, logger, "update password", err)
		return
	}

	logger.Info("password updated", "user_id", u.ID)

	SetSessionCookie(w, token, h.cookieDuration, h.isProduction)
	httputil.RespondToken(w, token, map[string]any{"user": u}, http.StatusOK)
}

// limitByIP enforces the per-IP window for an endpoint purpose. Returns true
// when the request was rejected.
func (h *Handler) limitByIP(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())
	ip := getClientIP(r)

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		// A broken limiter must not lock out legitimate traffic
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondError(w, "too many requests, please try again later", http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return false
}

// respondServiceError maps auth service errors to the HTTP boundary
func (h *Handler) respondServiceError(w http.ResponseWriter, logger *logging.Logger, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		logger.Warn(op + " failed: invalid credentials")
		httputil.RespondError(w, "invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrEmailRequired),
		errors.Is(err, ErrInvalidEmailFormat),
		errors.Is(err, ErrPasswordRequired),
		errors.Is(err, ErrPasswordTooShort),
		errors.Is(err, ErrPasswordMismatch):
		logger.Warn(op+" failed: validation error", "error", err.Error())
		httputil.RespondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, user.ErrDuplicateEmail):
		logger.Warn(op + " failed: email already exists")
		httputil.RespondError(w, "email already exists", http.StatusBadRequest)
	case errors.Is(err, user.ErrNotFound):
		logger.Warn(op + " failed: no user with that email")
		httputil.RespondError(w, "there is no user with that email address", http.StatusNotFound)
	case errors.Is(err, ErrResetTokenInvalid):
		logger.Warn(op + " failed: invalid or expired reset token")
		httputil.RespondError(w, "reset token is invalid or has expired", http.StatusBadRequest)
	case errors.Is(err, ErrMailDelivery):
		logger.Error(op+" failed: mail delivery", "error", err.Error())
		httputil.RespondError(w, "there was an error sending the email, try again later", http.StatusInternalServerError)
	default:
		logger.Error(op+" failed: internal error", "error", err.Error())
		httputil.RespondError(w, "something went wrong", http.StatusInternalServerError)
	}
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr format is "IP:port", extract just the IP
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
