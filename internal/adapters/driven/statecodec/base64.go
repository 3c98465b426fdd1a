// Package statecodec encodes the OAuth state token carried through platform redirects.
package statecodec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

// Ensure Base64JSON implements the interface.
var _ driven.StateCodec = (*Base64JSON)(nil)

// Base64JSON encodes state as base64url (padded) JSON.
// The token is not signed; integrity comes from the server-side nonce check.
type Base64JSON struct{}

// NewBase64JSON creates an unsigned codec.
func NewBase64JSON() *Base64JSON {
	return &Base64JSON{}
}

// Encode serializes the state.
func (c *Base64JSON) Encode(state domain.AuthorizationState) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("marshal state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// Decode parses a token produced by Encode.
// Tokens with stripped padding are accepted since some platforms trim '='.
func (c *Base64JSON) Decode(token string) (*domain.AuthorizationState, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("empty state token")
	}

	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		data, err = base64.RawURLEncoding.DecodeString(strings.TrimRight(token, "="))
		if err != nil {
			return nil, fmt.Errorf("decode state: %w", err)
		}
	}

	var state domain.AuthorizationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	return &state, nil
}
