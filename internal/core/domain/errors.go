package domain

import (
	"errors"
	"strconv"
)

// Domain errors - used across all layers
var (
	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedPlatform indicates no adapter is registered for the platform
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// ErrorKind classifies failures of the authorization and listing flows.
type ErrorKind string

const (
	KindAuthorizationDenied ErrorKind = "authorization_denied"
	KindMalformedState      ErrorKind = "malformed_state"
	KindStateMismatch       ErrorKind = "state_mismatch"
	KindTokenExchangeFailed ErrorKind = "token_exchange_failed"
	KindCredentialNotFound  ErrorKind = "credential_not_found"
	KindInvalidCredential   ErrorKind = "invalid_credential"
	KindUpstreamFetchFailed ErrorKind = "upstream_fetch_failed"
)

// IntegrationError is a structured error surfaced to callers of the broker.
// Status and Detail carry the upstream response when a platform call failed.
type IntegrationError struct {
	Kind    ErrorKind `json:"error"`
	Message string    `json:"message"`
	Status  int       `json:"status,omitempty"`
	Detail  string    `json:"detail,omitempty"`
}

func (e *IntegrationError) Error() string {
	msg := string(e.Kind)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Status != 0 {
		msg += " (upstream status " + strconv.Itoa(e.Status) + ")"
	}
	return msg
}

// Is reports whether target is an IntegrationError of the same kind.
func (e *IntegrationError) Is(target error) bool {
	var t *IntegrationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is matching.
var (
	ErrAuthorizationDenied = &IntegrationError{Kind: KindAuthorizationDenied, Message: "authorization denied"}
	ErrMalformedState      = &IntegrationError{Kind: KindMalformedState, Message: "malformed state"}
	ErrStateMismatch       = &IntegrationError{Kind: KindStateMismatch, Message: "state does not match"}
	ErrTokenExchangeFailed = &IntegrationError{Kind: KindTokenExchangeFailed, Message: "token exchange failed"}
	ErrCredentialNotFound  = &IntegrationError{Kind: KindCredentialNotFound, Message: "no credentials found"}
	ErrInvalidCredential   = &IntegrationError{Kind: KindInvalidCredential, Message: "invalid credential payload"}
	ErrUpstreamFetchFailed = &IntegrationError{Kind: KindUpstreamFetchFailed, Message: "upstream fetch failed"}
)

// NewIntegrationError creates an error of the given kind.
func NewIntegrationError(kind ErrorKind, message string) *IntegrationError {
	return &IntegrationError{Kind: kind, Message: message}
}

// NewUpstreamError creates an error of the given kind carrying the upstream response.
func NewUpstreamError(kind ErrorKind, message string, status int, body []byte) *IntegrationError {
	return &IntegrationError{
		Kind:    kind,
		Message: message,
		Status:  status,
		Detail:  string(body),
	}
}
