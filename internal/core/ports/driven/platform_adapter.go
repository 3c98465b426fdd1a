package driven

import (
	"context"
	"encoding/json"
	"iter"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
)

// RawRecord is a platform resource exactly as listed, plus the hierarchy
// context the adapter knew when it listed it.
type RawRecord struct {
	Platform domain.PlatformType
	// Type is the adapter's record kind (contact, Base, Table, page, database).
	Type string
	// Data is the record's JSON as returned by the platform.
	Data json.RawMessage

	ParentID   string
	ParentName string
}

// PlatformAdapter supplies the platform-specific half of the OAuth flow and
// resource listing. One implementation exists per platform.
type PlatformAdapter interface {
	// Platform returns the platform this adapter serves.
	Platform() domain.PlatformType

	// UsesPKCE reports whether the platform requires a PKCE code challenge.
	UsesPKCE() bool

	// AuthorizationURL builds the URL the user is redirected to.
	// codeChallenge is empty when UsesPKCE is false.
	AuthorizationURL(state, codeChallenge string) string

	// ExchangeToken trades an authorization code for the raw token response.
	// Non-success responses return a domain.IntegrationError of kind
	// KindTokenExchangeFailed carrying the upstream status and body.
	ExchangeToken(ctx context.Context, code, codeVerifier string) ([]byte, error)

	// ListResources lazily pages through the platform's resources.
	// A failed page yields a single KindUpstreamFetchFailed error and ends the sequence.
	ListResources(ctx context.Context, cred *domain.Credential) iter.Seq2[RawRecord, error]
}

// PlatformRegistry resolves adapters by platform.
type PlatformRegistry interface {
	// Get returns the adapter for a platform, or domain.ErrUnsupportedPlatform.
	Get(platform domain.PlatformType) (PlatformAdapter, error)

	// Platforms returns the registered platforms.
	Platforms() []domain.PlatformType
}
