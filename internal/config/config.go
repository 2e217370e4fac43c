// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// TokenAlgorithmHS256 is the only signing algorithm the service accepts.
const TokenAlgorithmHS256 = "HS256"

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing
	TokenSigningKey string        `env:"TOKEN_SIGNING_KEY,required"`
	TokenAlgorithm  string        `env:"TOKEN_ALGORITHM" envDefault:"HS256"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" envDefault:"30m"`

	// Optional master user seeded at startup. Seeding is skipped when the
	// username is empty.
	SeedAdminUsername    string `env:"SEED_ADMIN_USERNAME" envDefault:""`
	SeedAdminPassword    string `env:"SEED_ADMIN_PASSWORD" envDefault:""`
	SeedAdminDisplayName string `env:"SEED_ADMIN_DISPLAY_NAME" envDefault:""`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.TokenAlgorithm != TokenAlgorithmHS256 {
		return nil, fmt.Errorf("unsupported token algorithm %q (supported: %s)", cfg.TokenAlgorithm, TokenAlgorithmHS256)
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %s", cfg.TokenTTL)
	}

	if cfg.SeedAdminUsername != "" && cfg.SeedAdminPassword == "" {
		return nil, fmt.Errorf("SEED_ADMIN_PASSWORD is required when SEED_ADMIN_USERNAME is set")
	}

	return cfg, nil
}
