package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, TokenBackendJWT, cfg.Auth.TokenBackend)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
}

func TestLoad_JWTRequiresSecret(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "")
	t.Setenv("TOKEN_BACKEND", TokenBackendJWT)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_PasetoKeyLength(t *testing.T) {
	t.Setenv("TOKEN_BACKEND", TokenBackendPaseto)

	t.Setenv("TOKEN_SECRET", "too-short")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("TOKEN_SECRET", "0123456789abcdef0123456789abcdef")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, TokenBackendPaseto, cfg.Auth.TokenBackend)
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "whatever")
	t.Setenv("TOKEN_BACKEND", "macaroon")

	_, err := Load()
	assert.Error(t, err)
}

func TestConnectionString(t *testing.T) {
	t.Parallel()

	cfg := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "pw",
		DBName: "tours", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=pw dbname=tours sslmode=disable",
		cfg.ConnectionString(),
	)

	cfg.ChannelBinding = "require"
	assert.Contains(t, cfg.ConnectionString(), "channel_binding=require")
}
