package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondData(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	RespondData(rec, map[string]string{"tour": "forest hiker"}, http.StatusCreated)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "success", got["status"])
	assert.NotContains(t, got, "results")
	assert.NotContains(t, got, "token")
}

func TestRespondList(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	RespondList(rec, 3, map[string]any{"tours": []string{"a", "b", "c"}})

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "success", got["status"])
	assert.Equal(t, float64(3), got["results"])
}

func TestRespondList_ZeroResults(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	RespondList(rec, 0, map[string]any{"tours": []string{}})

	// A zero count must still serialize; the results field is a pointer so
	// omitempty does not drop it
	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got, "results")
	assert.Equal(t, float64(0), got["results"])
}

func TestRespondToken(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	RespondToken(rec, "abc123", map[string]string{"user": "alice"}, http.StatusOK)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "abc123", got["token"])
	assert.Equal(t, "success", got["status"])
}

func TestRespondError_StatusString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code       int
		wantStatus string
	}{
		{http.StatusBadRequest, "fail"},
		{http.StatusUnauthorized, "fail"},
		{http.StatusNotFound, "fail"},
		{http.StatusInternalServerError, "error"},
		{http.StatusBadGateway, "error"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		RespondError(rec, "boom", tt.code)

		assert.Equal(t, tt.code, rec.Code)

		var got map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, tt.wantStatus, got["status"])
		assert.Equal(t, "boom", got["message"])
	}
}
