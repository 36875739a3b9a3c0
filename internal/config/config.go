package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAdminEmail    = "admin@admin.se"
	DefaultAdminPassword = "admin123"
)

type Config struct {
	Port              int
	BackendURL        string
	BackendTimeout    time.Duration
	DatabasePath      string
	AdminEmail        string
	AdminPasswordHash string
	RefreshInterval   time.Duration
	SessionLifetime   time.Duration
	AllowedOrigins    []string
	LogLevel          slog.Level
}

// Load reads the configuration from the environment. A .env file is picked
// up when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		BackendURL:        orDefault(getenv("BACKEND_URL"), "http://localhost:8080/api"),
		DatabasePath:      orDefault(getenv("DATABASE_PATH"), "tennis_fun.db"),
		AdminEmail:        orDefault(getenv("ADMIN_EMAIL"), DefaultAdminEmail),
		AdminPasswordHash: getenv("ADMIN_PASSWORD_HASH"),
		AllowedOrigins:    splitList(orDefault(getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	port, err := strconv.Atoi(orDefault(getenv("PORT"), "3000"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("PORT must be between 1 and 65535, got %d", port)
	}
	cfg.Port = port

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"REFRESH_INTERVAL", "10s", &cfg.RefreshInterval},
		{"SESSION_LIFETIME", "24h", &cfg.SessionLifetime},
		{"BACKEND_TIMEOUT", "10s", &cfg.BackendTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(orDefault(getenv(d.key), d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dest = v
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(orDefault(getenv("LOG_LEVEL"), "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
