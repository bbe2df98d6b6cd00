package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAPIConfigDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "API_ADDR", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	t.Setenv("PORT", "5000")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("JWT_SECRET", DefaultJWTSecret)
	t.Setenv("TOKEN_TTL", "168h")
	t.Setenv("REVOCATION_BACKEND", "none")

	cfg, err := LoadAPIConfig()
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 168*time.Hour, cfg.TokenTTL)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadAPIConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("PORT", "8081")
	t.Setenv("API_ADDR", "")
	t.Setenv("STORE_DRIVER", " SQLite ")
	t.Setenv("JWT_SECRET", "another-secret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("REVOCATION_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadAPIConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "memory", cfg.RevocationBackend)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())

	t.Setenv("API_ADDR", "127.0.0.1:9000")
	cfg, err = LoadAPIConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
}

func TestValidateRejectsBadSettings(t *testing.T) {
	base := APIConfig{
		StoreDriver:       "memory",
		RevocationBackend: "none",
		JWTSecret:         "s3cret",
		TokenTTL:          time.Hour,
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*APIConfig)
	}{
		{name: "unknown driver", mutate: func(c *APIConfig) { c.StoreDriver = "mongo" }},
		{name: "unknown revocation", mutate: func(c *APIConfig) { c.RevocationBackend = "memcached" }},
		{name: "empty secret", mutate: func(c *APIConfig) { c.JWTSecret = " " }},
		{name: "default secret in production", mutate: func(c *APIConfig) {
			c.Environment = "production"
			c.JWTSecret = DefaultJWTSecret
		}},
		{name: "non-positive ttl", mutate: func(c *APIConfig) { c.TokenTTL = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetHelpersFallBack(t *testing.T) {
	t.Setenv("NOTES_TEST_INT", "not-a-number")
	t.Setenv("NOTES_TEST_DURATION", "soon")
	assert.Equal(t, 7, GetInt("NOTES_TEST_INT", 7))
	assert.Equal(t, time.Second, GetDuration("NOTES_TEST_DURATION", time.Second))
	assert.Equal(t, "fallback", GetString("NOTES_TEST_MISSING_KEY", "fallback"))

	t.Setenv("NOTES_TEST_INT", "42")
	t.Setenv("NOTES_TEST_DURATION", "3s")
	assert.Equal(t, 42, GetInt("NOTES_TEST_INT", 7))
	assert.Equal(t, 3*time.Second, GetDuration("NOTES_TEST_DURATION", time.Second))
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("NOTES_API_URL", "http://notes.internal:5000")
	t.Setenv("NOTES_REQUEST_TIMEOUT", "5s")
	t.Setenv("NOTES_SESSION_FILE", "/tmp/session.json")

	cfg := LoadClientConfig()
	assert.Equal(t, "http://notes.internal:5000", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/session.json", cfg.SessionPath)
}
