package domain

import "strings"

// KeySeparator joins platform, org and user into store keys, so identities
// must not contain it.
const KeySeparator = ":"

// AuthorizationState is round-tripped through the platform redirect as the OAuth
// state parameter. Only the nonce is trusted, and only after it matches the copy
// stored server-side under the same (org, user) key.
type AuthorizationState struct {
	Nonce  string `json:"state"`
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
}

// Validate checks that the state carries every field needed to locate the stored copy.
func (s *AuthorizationState) Validate() error {
	if strings.TrimSpace(s.Nonce) == "" {
		return NewIntegrationError(KindMalformedState, "state nonce is missing")
	}
	if strings.TrimSpace(s.UserID) == "" || strings.TrimSpace(s.OrgID) == "" {
		return NewIntegrationError(KindMalformedState, "state identity is missing")
	}
	if strings.Contains(s.UserID, KeySeparator) || strings.Contains(s.OrgID, KeySeparator) {
		return NewIntegrationError(KindMalformedState, "state identity contains "+KeySeparator)
	}
	return nil
}
