package domain

import "strings"

// PlatformType identifies a third-party SaaS platform
type PlatformType string

const (
	PlatformHubSpot  PlatformType = "hubspot"
	PlatformAirtable PlatformType = "airtable"
	PlatformNotion   PlatformType = "notion"
)

// SupportedPlatforms returns the platforms the broker knows how to connect
func SupportedPlatforms() []PlatformType {
	return []PlatformType{
		PlatformHubSpot,
		PlatformAirtable,
		PlatformNotion,
	}
}

// ParsePlatform resolves a path segment or config value to a known platform.
func ParsePlatform(s string) (PlatformType, bool) {
	p := PlatformType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SupportedPlatforms() {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// DisplayName returns a human-readable name for the platform.
func (p PlatformType) DisplayName() string {
	switch p {
	case PlatformHubSpot:
		return "HubSpot"
	case PlatformAirtable:
		return "Airtable"
	case PlatformNotion:
		return "Notion"
	default:
		return string(p)
	}
}

// PlatformConfig holds the static OAuth application settings for one platform.
type PlatformConfig struct {
	Platform     PlatformType `json:"platform"`
	ClientID     string       `json:"client_id"`
	ClientSecret string       `json:"-"` // never serialize
	RedirectURI  string       `json:"redirect_uri"`
	Scopes       []string     `json:"scopes"`
}

// IsConfigured reports whether the OAuth app has the minimum settings to run a flow.
func (c PlatformConfig) IsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURI != ""
}
