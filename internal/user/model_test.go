package user

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSON_HidesSensitiveFields(t *testing.T) {
	t.Parallel()

	now := time.Now()
	token := "stored-hash"
	u := User{
		ID:                   uuid.New(),
		Name:                 "Alice",
		Email:                "alice@example.com",
		Role:                 RoleUser,
		PasswordHash:         "$argon2id$...",
		PasswordChangedAt:    &now,
		PasswordResetToken:   &token,
		PasswordResetExpires: &now,
		Active:               true,
	}

	raw, err := json.Marshal(u)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Contains(t, got, "name")
	assert.Contains(t, got, "email")
	assert.Contains(t, got, "role")

	for _, hidden := range []string{
		"password", "passwordHash", "PasswordHash",
		"PasswordChangedAt", "PasswordResetToken", "PasswordResetExpires",
		"Active", "active",
	} {
		assert.NotContains(t, got, hidden)
	}
	assert.NotContains(t, string(raw), "argon2id")
	assert.NotContains(t, string(raw), "stored-hash")
}

func TestRole(t *testing.T) {
	t.Parallel()

	for _, r := range []Role{RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin} {
		assert.True(t, r.Valid(), string(r))
	}
	assert.False(t, Role("superadmin").Valid())

	got, err := ParseRole("lead-guide")
	require.NoError(t, err)
	assert.Equal(t, RoleLeadGuide, got)

	_, err = ParseRole("root")
	assert.Error(t, err)
}
