package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "http://localhost:8080/api", cfg.BackendURL)
	assert.Equal(t, DefaultAdminEmail, cfg.AdminEmail)
	assert.Empty(t, cfg.AdminPasswordHash)
	assert.Equal(t, 10*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 24*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envOf(map[string]string{
		"PORT":                 "4000",
		"BACKEND_URL":          "http://backend:8080/api",
		"REFRESH_INTERVAL":     "2s",
		"CORS_ALLOWED_ORIGINS": "http://a.example, http://b.example",
		"LOG_LEVEL":            "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "http://backend:8080/api", cfg.BackendURL)
	assert.Equal(t, 2*time.Second, cfg.RefreshInterval)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestFromEnvInvalid(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "port not a number", env: map[string]string{"PORT": "eighty"}},
		{name: "port out of range", env: map[string]string{"PORT": "70000"}},
		{name: "bad interval", env: map[string]string{"REFRESH_INTERVAL": "soon"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromEnv(envOf(tc.env))
			assert.Error(t, err)
		})
	}
}
