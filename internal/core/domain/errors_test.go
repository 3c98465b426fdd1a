package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrUnsupportedPlatform", ErrUnsupportedPlatform, "unsupported platform"},
		{"ErrAuthorizationDenied", ErrAuthorizationDenied, "authorization_denied: authorization denied"},
		{"ErrStateMismatch", ErrStateMismatch, "state_mismatch: state does not match"},
		{"ErrCredentialNotFound", ErrCredentialNotFound, "credential_not_found: no credentials found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestIntegrationErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrAuthorizationDenied,
		ErrMalformedState,
		ErrStateMismatch,
		ErrTokenExchangeFailed,
		ErrCredentialNotFound,
		ErrInvalidCredential,
		ErrUpstreamFetchFailed,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestIntegrationError_IsMatchesKind(t *testing.T) {
	err := NewUpstreamError(KindTokenExchangeFailed, "hubspot token endpoint", 401, []byte(`{"status":"BAD_AUTH_CODE"}`))
	wrapped := fmt.Errorf("callback: %w", err)

	if !errors.Is(wrapped, ErrTokenExchangeFailed) {
		t.Error("wrapped exchange error should match ErrTokenExchangeFailed")
	}
	if errors.Is(wrapped, ErrStateMismatch) {
		t.Error("exchange error should not match ErrStateMismatch")
	}

	var ie *IntegrationError
	if !errors.As(wrapped, &ie) {
		t.Fatal("expected errors.As to find IntegrationError")
	}
	if ie.Status != 401 {
		t.Errorf("expected status 401, got %d", ie.Status)
	}
	if ie.Detail != `{"status":"BAD_AUTH_CODE"}` {
		t.Errorf("unexpected detail %q", ie.Detail)
	}
}

func TestIntegrationError_ErrorIncludesStatus(t *testing.T) {
	err := NewUpstreamError(KindUpstreamFetchFailed, "list contacts", 503, nil)
	expected := "upstream_fetch_failed: list contacts (upstream status 503)"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestIntegrationError_PlainSentinelNotMatched(t *testing.T) {
	if errors.Is(ErrInvalidInput, ErrCredentialNotFound) {
		t.Error("plain sentinel should not match an integration error")
	}
}
