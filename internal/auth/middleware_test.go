package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-tours-api/internal/logging"
	"github.com/redmonkez12/go-tours-api/internal/user"
)

type fakeResolver struct {
	user *user.User
}

func (f *fakeResolver) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, user.ErrNotFound
	}
	return f.user, nil
}

func newTestMiddleware(t *testing.T, u *user.User) (*Middleware, TokenService) {
	t.Helper()
	tokens, err := NewJWTService([]byte("middleware-secret"))
	require.NoError(t, err)
	return NewMiddleware(tokens, &fakeResolver{user: u}), tokens
}

// okHandler records whether the request made it through the middleware
func okHandler(called *bool, gotUser **user.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if gotUser != nil {
			*gotUser, _ = GetUserFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	t.Parallel()

	u := &user.User{ID: uuid.New(), Email: "a@example.com", Role: user.RoleUser}
	mw, tokens := newTestMiddleware(t, u)

	tok, err := tokens.CreateToken(u.ID, time.Hour)
	require.NoError(t, err)

	var called bool
	var got *user.User
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	mw.RequireAuth(okHandler(&called, &got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
}

func TestRequireAuth_CookieFallback(t *testing.T) {
	t.Parallel()

	u := &user.User{ID: uuid.New(), Role: user.RoleUser}
	mw, tokens := newTestMiddleware(t, u)

	tok, err := tokens.CreateToken(u.ID, time.Hour)
	require.NoError(t, err)

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: tok})
	rec := httptest.NewRecorder()

	mw.RequireAuth(okHandler(&called, nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireAuth_Rejections(t *testing.T) {
	t.Parallel()

	u := &user.User{ID: uuid.New(), Role: user.RoleUser}
	mw, tokens := newTestMiddleware(t, u)

	valid, err := tokens.CreateToken(u.ID, time.Hour)
	require.NoError(t, err)
	unknownUser, err := tokens.CreateToken(uuid.New(), time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no credentials", func(r *http.Request) {}},
		{"malformed header", func(r *http.Request) {
			r.Header.Set("Authorization", "Token "+valid)
		}},
		{"garbage token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not.a.token")
		}},
		{"user no longer exists", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+unknownUser)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			mw.RequireAuth(okHandler(&called, nil)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)
		})
	}
}

func TestRequireAuth_PasswordChangedAfterIssue(t *testing.T) {
	t.Parallel()

	u := &user.User{ID: uuid.New(), Role: user.RoleUser}
	mw, tokens := newTestMiddleware(t, u)

	tok, err := tokens.CreateToken(u.ID, time.Hour)
	require.NoError(t, err)

	changed := time.Now().Add(time.Minute)
	u.PasswordChangedAt = &changed

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	mw.RequireAuth(okHandler(&called, nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireAuth_PasswordChangedSameSecondAsIssue(t *testing.T) {
	t.Parallel()

	u := &user.User{ID: uuid.New(), Role: user.RoleUser}
	mw, tokens := newTestMiddleware(t, u)

	tok, err := tokens.CreateToken(u.ID, time.Hour)
	require.NoError(t, err)
	claims, err := tokens.VerifyToken(tok)
	require.NoError(t, err)

	// The change lands a few hundred milliseconds into the issuance second;
	// the token's whole-second issued-at must still count as fresh
	changed := claims.IssuedAt.Add(300 * time.Millisecond)
	u.PasswordChangedAt = &changed

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	mw.RequireAuth(okHandler(&called, nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireAuth_AcceptsTokenIssuedByPasswordUpdate(t *testing.T) {
	t.Parallel()

	store := &fakeUserStore{}
	tokens, err := NewJWTService([]byte("test-secret"))
	require.NoError(t, err)
	svc := NewService(store, &fakeMailer{}, tokens, logging.NewLogger(true), time.Hour)

	u, _, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "password123", "password123")
	require.NoError(t, err)

	tok, err := svc.UpdatePassword(context.Background(), u, "password123", "newpassword1", "newpassword1")
	require.NoError(t, err)

	// The session token handed back alongside the change must survive the
	// staleness check
	var called bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	NewMiddleware(tokens, store).RequireAuth(okHandler(&called, nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireAuth_AcceptsTokenIssuedByPasswordReset(t *testing.T) {
	t.Parallel()

	store := &fakeUserStore{}
	mailer := &fakeMailer{}
	tokens, err := NewJWTService([]byte("test-secret"))
	require.NoError(t, err)
	svc := NewService(store, mailer, tokens, logging.NewLogger(true), time.Hour)

	_, _, err = svc.Signup(context.Background(), "Alice", "alice@example.com", "password123", "password123")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))

	_, tok, err := svc.ResetPassword(context.Background(), mailer.sentToken, "newpassword1", "newpassword1")
	require.NoError(t, err)

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	NewMiddleware(tokens, store).RequireAuth(okHandler(&called, nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		role     user.Role
		allowed  []user.Role
		wantCode int
	}{
		{"admin allowed", user.RoleAdmin, []user.Role{user.RoleAdmin, user.RoleLeadGuide}, http.StatusOK},
		{"lead guide allowed", user.RoleLeadGuide, []user.Role{user.RoleAdmin, user.RoleLeadGuide}, http.StatusOK},
		{"guide forbidden", user.RoleGuide, []user.Role{user.RoleAdmin, user.RoleLeadGuide}, http.StatusForbidden},
		{"user forbidden", user.RoleUser, []user.Role{user.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			req := httptest.NewRequest(http.MethodDelete, "/", nil)
			u := &user.User{ID: uuid.New(), Role: tt.role}
			req = req.WithContext(context.WithValue(req.Context(), UserContextKey, u))
			rec := httptest.NewRecorder()

			RequireRole(tt.allowed...)(okHandler(&called, nil)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantCode == http.StatusOK, called)
		})
	}
}

func TestRequireRole_NoUserInContext(t *testing.T) {
	t.Parallel()

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	RequireRole(user.RoleAdmin)(okHandler(&called, nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}
