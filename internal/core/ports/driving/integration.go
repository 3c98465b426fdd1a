package driving

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
)

// IntegrationService brokers OAuth authorization for third-party platforms and
// lists their resources as IntegrationItems.
type IntegrationService interface {
	// Authorize starts an OAuth flow for a user within an organization.
	// The generated state is stored for validation during callback.
	Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResponse, error)

	// Callback handles the platform redirect. It validates state, exchanges the
	// code for a credential and stores it for a single later retrieval.
	Callback(ctx context.Context, req CallbackRequest) (*CallbackResponse, error)

	// Credentials returns the stored credential and removes it.
	// A second call for the same flow fails with domain.ErrCredentialNotFound.
	Credentials(ctx context.Context, req CredentialsRequest) (json.RawMessage, error)

	// LoadItems lists and normalizes the platform's resources using a credential payload.
	LoadItems(ctx context.Context, req LoadItemsRequest) ([]*domain.IntegrationItem, error)
}

// AuthorizeRequest represents a request to start an OAuth flow.
type AuthorizeRequest struct {
	Platform domain.PlatformType `json:"platform" example:"hubspot"`
	UserID   string              `json:"user_id" example:"TestUser"`
	OrgID    string              `json:"org_id" example:"TestOrg"`
}

// AuthorizeResponse contains the authorization URL.
type AuthorizeResponse struct {
	// AuthorizationURL is the URL to open in the user's browser.
	AuthorizationURL string `json:"authorization_url"`

	// ExpiresAt is when the pending state expires.
	ExpiresAt string `json:"expires_at" example:"2024-01-15T10:10:00Z"`
}

// CallbackRequest represents the OAuth redirect from the platform.
type CallbackRequest struct {
	Platform domain.PlatformType `json:"platform"`

	// Code is the authorization code from the platform.
	Code string `json:"code"`

	// State is the opaque token issued by Authorize.
	State string `json:"state"`

	// Error is set if the platform reported a failure.
	Error string `json:"error,omitempty" example:"access_denied"`

	// ErrorDescription provides details about the error.
	ErrorDescription string `json:"error_description,omitempty"`
}

// CallbackResponse is the terminal response of a successful callback.
type CallbackResponse struct {
	// HTML instructs the initiating browser window to close itself.
	HTML string `json:"-"`
}

// CredentialsRequest identifies a finished flow.
type CredentialsRequest struct {
	Platform domain.PlatformType `json:"platform"`
	UserID   string              `json:"user_id"`
	OrgID    string              `json:"org_id"`
}

// LoadItemsRequest carries a credential payload previously returned by Credentials.
type LoadItemsRequest struct {
	Platform    domain.PlatformType `json:"platform"`
	Credentials string              `json:"credentials"`
}
