// Package config loads runtime settings from the environment.
//
// LOAD ORDER:
//  1. A .env file in the working directory, if present (local development).
//  2. Process environment, parsed into Config by struct tags.
//  3. Rule checks with go-playground/validator.
//
// Real environment variables win over .env: godotenv.Load never overrides a
// variable that is already set.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every setting the server needs at startup.
//
// ADMIN_EMAILS is not a field: it is read per user creation through
// AdminEmailsFromEnv, so changing it takes effect without a restart.
type Config struct {
	Port      int    `env:"PORT" envDefault:"8080" validate:"min=1,max=65535"`
	DBPath    string `env:"DB_PATH" envDefault:"data/shelf.db" validate:"required"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`

	JWTSecret string        `env:"JWT_SECRET,required" validate:"min=16"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"shelf" validate:"required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"1h" validate:"min=1s"`

	GitHubClientID     string `env:"GITHUB_CLIENT_ID" validate:"required_with=GitHubClientSecret"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET" validate:"required_with=GitHubClientID"`
	GitHubCallbackURL  string `env:"GITHUB_CALLBACK_URL" validate:"omitempty,url"`
}

// GitHubEnabled reports whether OAuth login routes should be registered.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// Load reads configuration from .env (optional) and the environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("config: loading .env: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.GitHubCallbackURL == "" {
		cfg.GitHubCallbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", cfg.Port)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return nil, fmt.Errorf("config: %s failed %q check", fe.Field(), fe.Tag())
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	return &cfg, nil
}

// AdminEmailsFromEnv returns the current admin allow-list.
// It reads ADMIN_EMAILS on every call.
func AdminEmailsFromEnv() []string {
	return SplitEmails(os.Getenv("ADMIN_EMAILS"))
}

// SplitEmails parses a comma-separated list: entries are trimmed and
// lower-cased, empty entries dropped.
func SplitEmails(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if e := strings.ToLower(strings.TrimSpace(part)); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
