package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/redmonkez12/go-tours-api/internal/logging"
)

func resolveAs(u *User) func(ctx context.Context) (*User, bool) {
	return func(ctx context.Context) (*User, bool) {
		return u, u != nil
	}
}

func TestUpdateMe_RejectsPasswordFields(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Name: "Alice", Role: RoleUser}
	// The password check fires before the repository is touched
	h := NewHandler(nil, logging.NewLogger(true), resolveAs(u))

	body := `{"name":"Alice","password":"newpassword1","passwordConfirm":"newpassword1"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-me", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.UpdateMe(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "update-my-password")
}

func TestUpdateMe_NothingToUpdate(t *testing.T) {
	t.Parallel()

	u := &User{ID: uuid.New(), Role: RoleUser}
	h := NewHandler(nil, logging.NewLogger(true), resolveAs(u))

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/users/update-me", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.UpdateMe(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSelfServiceRoutes_RequireUser(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil, logging.NewLogger(true), resolveAs(nil))

	endpoints := []func(http.ResponseWriter, *http.Request){h.GetMe, h.UpdateMe, h.DeleteMe}
	for _, endpoint := range endpoints {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		endpoint(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}
