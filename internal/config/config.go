// Package config loads sercha-bridge settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
)

// Config is the full process configuration.
type Config struct {
	Host    string `env:"HOST" envDefault:"0.0.0.0"`
	Port    int    `env:"PORT" envDefault:"8000"`
	Version string `env:"VERSION" envDefault:"dev"`

	// RedisURL selects the Redis store. When empty, DatabaseURL is used.
	RedisURL    string `env:"REDIS_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	StateTTL      time.Duration `env:"STATE_TTL" envDefault:"10m"`
	CredentialTTL time.Duration `env:"CREDENTIAL_TTL" envDefault:"10m"`

	// StateSigningSecret enables signed state tokens. When empty, state tokens
	// are plain base64 JSON.
	StateSigningSecret string `env:"STATE_SIGNING_SECRET"`

	// CredentialEncryptionKey enables sealing stored values. A 64-character hex
	// string is used as the raw key; anything else is stretched with HKDF.
	CredentialEncryptionKey string `env:"CREDENTIAL_ENCRYPTION_KEY"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	LogLevel           string   `env:"LOG_LEVEL" envDefault:"info"`

	HubSpot  PlatformEnv `envPrefix:"HUBSPOT_"`
	Airtable PlatformEnv `envPrefix:"AIRTABLE_"`
	Notion   PlatformEnv `envPrefix:"NOTION_"`
}

// PlatformEnv holds one platform's OAuth application settings.
type PlatformEnv struct {
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	RedirectURI  string   `env:"REDIRECT_URI"`
	Scopes       []string `env:"SCOPES" envSeparator:" "`
}

// Load reads an optional .env file and then parses the process environment.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, cfg.Validate()
}

// LoadFrom parses configuration from the given variables only.
func LoadFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, cfg.Validate()
}

// Validate checks settings that cannot be expressed as defaults.
func (c *Config) Validate() error {
	var errs []error

	if c.RedisURL == "" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("one of REDIS_URL or DATABASE_URL is required"))
	}
	if c.StateTTL <= 0 {
		errs = append(errs, errors.New("STATE_TTL must be positive"))
	}
	if c.CredentialTTL <= 0 {
		errs = append(errs, errors.New("CREDENTIAL_TTL must be positive"))
	}
	if c.StateSigningSecret != "" && len(c.StateSigningSecret) < 16 {
		errs = append(errs, errors.New("STATE_SIGNING_SECRET must be at least 16 bytes"))
	}
	for _, p := range domain.SupportedPlatforms() {
		pc := c.Platform(p)
		if pc.ClientID != "" && !pc.IsConfigured() {
			errs = append(errs, fmt.Errorf("%s: client id set but client secret or redirect uri missing", p))
		}
	}

	return errors.Join(errs...)
}

// Platform returns the OAuth settings for a platform.
func (c *Config) Platform(p domain.PlatformType) domain.PlatformConfig {
	var pe PlatformEnv
	switch p {
	case domain.PlatformHubSpot:
		pe = c.HubSpot
	case domain.PlatformAirtable:
		pe = c.Airtable
	case domain.PlatformNotion:
		pe = c.Notion
	}
	return domain.PlatformConfig{
		Platform:     p,
		ClientID:     pe.ClientID,
		ClientSecret: pe.ClientSecret,
		RedirectURI:  pe.RedirectURI,
		Scopes:       pe.Scopes,
	}
}

// EnabledPlatforms returns the platforms with a configured OAuth application.
func (c *Config) EnabledPlatforms() []domain.PlatformType {
	var out []domain.PlatformType
	for _, p := range domain.SupportedPlatforms() {
		if c.Platform(p).IsConfigured() {
			out = append(out, p)
		}
	}
	return out
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
