package driven

import "github.com/custodia-labs/sercha-bridge/internal/core/domain"

// StateCodec turns an AuthorizationState into the opaque token sent through
// the platform redirect, and back.
type StateCodec interface {
	// Encode serializes the state into a URL-safe token.
	Encode(state domain.AuthorizationState) (string, error)

	// Decode parses a token produced by Encode.
	// Returns an error if the token is undecodable or fails verification.
	Decode(token string) (*domain.AuthorizationState, error)
}
