package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"REDIS_URL": "redis://localhost:6379/0"})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.StateTTL)
	assert.Equal(t, 10*time.Minute, cfg.CredentialTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.Empty(t, cfg.EnabledPlatforms())
}

func TestLoadFrom_Platforms(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"DATABASE_URL":          "postgres://localhost/bridge",
		"HUBSPOT_CLIENT_ID":     "hs-id",
		"HUBSPOT_CLIENT_SECRET": "hs-secret",
		"HUBSPOT_REDIRECT_URI":  "http://localhost:8000/integrations/hubspot/oauth2callback",
		"HUBSPOT_SCOPES":        "crm.objects.contacts.read oauth",
		"NOTION_CLIENT_ID":      "n-id",
		"NOTION_CLIENT_SECRET":  "n-secret",
		"NOTION_REDIRECT_URI":   "http://localhost:8000/integrations/notion/oauth2callback",
		"CORS_ALLOWED_ORIGINS":  "http://a.test,http://b.test",
		"STATE_TTL":             "5m",
		"LOG_LEVEL":             "DEBUG",
	})
	require.NoError(t, err)

	assert.Equal(t, []domain.PlatformType{domain.PlatformHubSpot, domain.PlatformNotion}, cfg.EnabledPlatforms())

	hs := cfg.Platform(domain.PlatformHubSpot)
	assert.Equal(t, "hs-id", hs.ClientID)
	assert.Equal(t, []string{"crm.objects.contacts.read", "oauth"}, hs.Scopes)

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.StateTTL)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadFrom_RequiresStore(t *testing.T) {
	_, err := LoadFrom(map[string]string{})
	assert.ErrorContains(t, err, "REDIS_URL")
}

func TestLoadFrom_PartialPlatform(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"REDIS_URL":          "redis://localhost:6379/0",
		"AIRTABLE_CLIENT_ID": "at-id",
	})
	assert.ErrorContains(t, err, "airtable")
}

func TestLoadFrom_ShortSigningSecret(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"REDIS_URL":            "redis://localhost:6379/0",
		"STATE_SIGNING_SECRET": "short",
	})
	assert.ErrorContains(t, err, "STATE_SIGNING_SECRET")
}

func TestLoadFrom_InvalidDuration(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"REDIS_URL": "redis://localhost:6379/0",
		"STATE_TTL": "ten minutes",
	})
	assert.Error(t, err)
}
