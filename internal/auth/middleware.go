package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-tours-api/internal/httputil"
	"github.com/redmonkez12/go-tours-api/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// UserResolver resolves a token's user id to a live account
type UserResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Middleware handles authentication for protected routes
type Middleware struct {
	tokens TokenService
	users  UserResolver
}

func NewMiddleware(tokens TokenService, users UserResolver) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// RequireAuth validates the session token, resolves the user, and rejects
// tokens issued before the user's last password change. Each check is
// terminal for the request.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		// Priority 1: Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			} else {
				httputil.RespondError(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}
		}

		// Priority 2: Cookie (fallback)
		if token == "" {
			cookieToken, err := GetTokenFromCookie(r)
			if err != nil {
				httputil.RespondError(w, "please log in to get access", http.StatusUnauthorized)
				return
			}
			token = cookieToken
		}

		claims, err := m.tokens.VerifyToken(token)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				httputil.RespondError(w, "token has expired, please log in again", http.StatusUnauthorized)
				return
			}
			httputil.RespondError(w, "invalid token", http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			httputil.RespondError(w, "invalid user ID in token", http.StatusUnauthorized)
			return
		}

		// A deleted or deactivated account keeps a valid-looking token; reject it
		u, err := m.users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				httputil.RespondError(w, "the user belonging to this token no longer exists", http.StatusUnauthorized)
				return
			}
			httputil.RespondError(w, "failed to authenticate request", http.StatusInternalServerError)
			return
		}

		// A password change after issuance invalidates the session. Token
		// issued-at claims carry whole-second precision while the change
		// timestamp is sub-second, so compare at second granularity: a token
		// issued in the same second as the change stays valid.
		if u.PasswordChangedAt != nil && u.PasswordChangedAt.Truncate(time.Second).After(claims.IssuedAt) {
			httputil.RespondError(w, "password was changed after this token was issued, please log in again", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole restricts a route to the given roles. It must run after
// RequireAuth, which attaches the user to the context.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	allowed := make(map[user.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := GetUserFromContext(r.Context())
			if !ok {
				httputil.RespondError(w, "please log in to get access", http.StatusUnauthorized)
				return
			}

			if !allowed[u.Role] {
				httputil.RespondError(w, "you do not have permission to perform this action", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts the authenticated user from the request context
func GetUserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*user.User)
	return u, ok
}
