package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := NewLoggingMiddleware(logger).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/integrations/hubspot/oauth2callback?code=secret-code&state=s", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rr.Code)
	}

	out := buf.String()
	if !strings.Contains(out, "status=418") {
		t.Errorf("expected status in log, got %q", out)
	}
	if !strings.Contains(out, "path=/integrations/hubspot/oauth2callback") {
		t.Errorf("expected path in log, got %q", out)
	}
	if strings.Contains(out, "secret-code") {
		t.Error("query string must not be logged")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := NewRecoveryMiddleware(discardLogger()).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rr.Code)
	}
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		allowed       []string
		origin        string
		method        string
		expectHeader  bool
		expectedCode  int
		expectHandler bool
	}{
		{
			name:          "allowed origin",
			allowed:       []string{"http://localhost:3000"},
			origin:        "http://localhost:3000",
			method:        http.MethodPost,
			expectHeader:  true,
			expectedCode:  http.StatusOK,
			expectHandler: true,
		},
		{
			name:          "disallowed origin",
			allowed:       []string{"http://localhost:3000"},
			origin:        "http://evil.test",
			method:        http.MethodPost,
			expectHeader:  false,
			expectedCode:  http.StatusOK,
			expectHandler: true,
		},
		{
			name:          "wildcard",
			allowed:       []string{"*"},
			origin:        "http://any.test",
			method:        http.MethodGet,
			expectHeader:  true,
			expectedCode:  http.StatusOK,
			expectHandler: true,
		},
		{
			name:          "preflight",
			allowed:       []string{"http://localhost:3000"},
			origin:        "http://localhost:3000",
			method:        http.MethodOptions,
			expectHeader:  true,
			expectedCode:  http.StatusNoContent,
			expectHandler: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewCORSMiddleware(tt.allowed).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/integrations/hubspot/authorize", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedCode {
				t.Errorf("expected status %d, got %d", tt.expectedCode, rr.Code)
			}
			got := rr.Header().Get("Access-Control-Allow-Origin")
			if tt.expectHeader && got != tt.origin {
				t.Errorf("expected allow-origin %q, got %q", tt.origin, got)
			}
			if !tt.expectHeader && got != "" {
				t.Errorf("expected no allow-origin header, got %q", got)
			}
			if tt.expectHeader && rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
				t.Error("expected credentials to be allowed")
			}
			if called != tt.expectHandler {
				t.Errorf("handler called = %v, want %v", called, tt.expectHandler)
			}
		})
	}
}
