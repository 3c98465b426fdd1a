package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseCredential(t *testing.T) {
	payload := []byte(`{"access_token":"at-1","refresh_token":"rt-1","token_type":"bearer","expires_in":1800,"extra":"kept"}`)

	cred, err := ParseCredential(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred.AccessToken != "at-1" {
		t.Errorf("expected access token at-1, got %s", cred.AccessToken)
	}
	if cred.ExpiresIn != 1800 {
		t.Errorf("expected expires_in 1800, got %d", cred.ExpiresIn)
	}

	out, err := json.Marshal(cred)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != string(payload) {
		t.Errorf("expected raw payload to round trip, got %s", out)
	}
}

func TestParseCredential_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "definitely not json"},
		{"missing token", `{"token_type":"bearer"}`},
		{"blank token", `{"access_token":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCredential([]byte(tt.payload))
			if !errors.Is(err, ErrInvalidCredential) {
				t.Errorf("expected ErrInvalidCredential, got %v", err)
			}
		})
	}
}

func TestCredential_ExpiresAt(t *testing.T) {
	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cred := &Credential{ExpiresIn: 60}
	exp := cred.ExpiresAt(issued)
	if exp == nil || !exp.Equal(issued.Add(time.Minute)) {
		t.Errorf("expected expiry one minute after issue, got %v", exp)
	}

	if (&Credential{}).ExpiresAt(issued) != nil {
		t.Error("expected nil expiry when no hint given")
	}
}

func TestAuthorizationState_Validate(t *testing.T) {
	valid := AuthorizationState{Nonce: "n", UserID: "u", OrgID: "o"}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	for _, s := range []AuthorizationState{
		{UserID: "u", OrgID: "o"},
		{Nonce: "n", OrgID: "o"},
		{Nonce: "n", UserID: "u"},
		{Nonce: "n", UserID: "b:c", OrgID: "a"},
		{Nonce: "n", UserID: "c", OrgID: "a:b"},
	} {
		if err := s.Validate(); !errors.Is(err, ErrMalformedState) {
			t.Errorf("expected ErrMalformedState for %+v, got %v", s, err)
		}
	}
}

func TestIntegrationItem_Defaults(t *testing.T) {
	item := NewIntegrationItem("42", "contact").WithParent("", "")
	if !item.Visibility {
		t.Error("expected items to be visible by default")
	}
	if item.ParentID != nil || item.ParentPathOrName != nil {
		t.Error("expected empty parent to stay unset")
	}

	item.WithParent("base-1", "Base One")
	if item.ParentID == nil || *item.ParentID != "base-1" {
		t.Error("expected parent id to be set")
	}
}
