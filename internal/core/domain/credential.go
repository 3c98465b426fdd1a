package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Credential is the bearer-token payload returned by a platform's token endpoint.
// Raw holds the exact response body; the typed fields are decoded for convenience.
type Credential struct {
	Raw json.RawMessage `json:"-"`

	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`

	// Notion workspace fields
	WorkspaceID   string `json:"workspace_id,omitempty"`
	WorkspaceName string `json:"workspace_name,omitempty"`
	BotID         string `json:"bot_id,omitempty"`
}

// ParseCredential decodes a token response payload.
func ParseCredential(payload []byte) (*Credential, error) {
	var cred Credential
	if err := json.Unmarshal(payload, &cred); err != nil {
		return nil, NewIntegrationError(KindInvalidCredential, "credential payload is not valid JSON")
	}
	if strings.TrimSpace(cred.AccessToken) == "" {
		return nil, NewIntegrationError(KindInvalidCredential, "credential has no access token")
	}
	cred.Raw = append(json.RawMessage(nil), payload...)
	return &cred, nil
}

// MarshalJSON returns the raw payload so the caller sees exactly what the platform issued.
func (c *Credential) MarshalJSON() ([]byte, error) {
	if len(c.Raw) > 0 {
		return c.Raw, nil
	}
	type plain Credential
	return json.Marshal((*plain)(c))
}

// ExpiresAt computes the token expiry relative to issuedAt.
// Returns nil when the platform gave no expiry hint.
func (c *Credential) ExpiresAt(issuedAt time.Time) *time.Time {
	if c.ExpiresIn <= 0 {
		return nil
	}
	t := issuedAt.Add(time.Duration(c.ExpiresIn) * time.Second)
	return &t
}
