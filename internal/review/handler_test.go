package review

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/redmonkez12/go-tours-api/internal/auth"
	"github.com/redmonkez12/go-tours-api/internal/logging"
	"github.com/redmonkez12/go-tours-api/internal/user"
)

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	u := &user.User{ID: uuid.New(), Role: user.RoleUser}
	return req.WithContext(context.WithValue(req.Context(), auth.UserContextKey, u))
}

func TestCreate_RatingOutOfRange(t *testing.T) {
	t.Parallel()

	// Validation fires before the repository is touched
	h := NewHandler(nil, logging.NewLogger(true))
	tourID := uuid.New()

	for _, rating := range []int{0, -1, 6, 100} {
		t.Run(fmt.Sprint(rating), func(t *testing.T) {
			body := fmt.Sprintf(`{"review":"great","rating":%d,"tour":%q}`, rating, tourID)
			rec := httptest.NewRecorder()

			h.Create(rec, authedRequest(http.MethodPost, "/api/v1/reviews", body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreate_MissingTour(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil, logging.NewLogger(true))

	rec := httptest.NewRecorder()
	h.Create(rec, authedRequest(http.MethodPost, "/api/v1/reviews", `{"review":"great","rating":5}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "tour id is required")
}

func TestCreate_Unauthenticated(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil, logging.NewLogger(true))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reviews", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
