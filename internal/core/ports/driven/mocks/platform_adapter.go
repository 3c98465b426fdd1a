package mocks

import (
	"context"
	"iter"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

var _ driven.PlatformAdapter = (*MockPlatformAdapter)(nil)

// MockPlatformAdapter is a mock implementation of PlatformAdapter for testing
type MockPlatformAdapter struct {
	PlatformType domain.PlatformType
	PKCE         bool

	AuthorizationURLFn func(state, codeChallenge string) string
	ExchangeTokenFn    func(ctx context.Context, code, codeVerifier string) ([]byte, error)
	ListResourcesFn    func(ctx context.Context, cred *domain.Credential) iter.Seq2[driven.RawRecord, error]
}

// NewMockPlatformAdapter creates a MockPlatformAdapter for the given platform
func NewMockPlatformAdapter(platform domain.PlatformType) *MockPlatformAdapter {
	return &MockPlatformAdapter{PlatformType: platform}
}

func (m *MockPlatformAdapter) Platform() domain.PlatformType {
	return m.PlatformType
}

func (m *MockPlatformAdapter) UsesPKCE() bool {
	return m.PKCE
}

func (m *MockPlatformAdapter) AuthorizationURL(state, codeChallenge string) string {
	if m.AuthorizationURLFn != nil {
		return m.AuthorizationURLFn(state, codeChallenge)
	}
	return "https://example.com/oauth/authorize?state=" + state
}

func (m *MockPlatformAdapter) ExchangeToken(ctx context.Context, code, codeVerifier string) ([]byte, error) {
	if m.ExchangeTokenFn != nil {
		return m.ExchangeTokenFn(ctx, code, codeVerifier)
	}
	return []byte(`{"access_token":"mock-access-token","token_type":"bearer"}`), nil
}

func (m *MockPlatformAdapter) ListResources(ctx context.Context, cred *domain.Credential) iter.Seq2[driven.RawRecord, error] {
	if m.ListResourcesFn != nil {
		return m.ListResourcesFn(ctx, cred)
	}
	return func(yield func(driven.RawRecord, error) bool) {}
}

// MockPlatformRegistry is a map-backed PlatformRegistry for testing
type MockPlatformRegistry struct {
	Adapters map[domain.PlatformType]driven.PlatformAdapter
}

// NewMockPlatformRegistry registers the given adapters
func NewMockPlatformRegistry(adapters ...driven.PlatformAdapter) *MockPlatformRegistry {
	r := &MockPlatformRegistry{Adapters: make(map[domain.PlatformType]driven.PlatformAdapter)}
	for _, a := range adapters {
		r.Adapters[a.Platform()] = a
	}
	return r
}

func (r *MockPlatformRegistry) Get(platform domain.PlatformType) (driven.PlatformAdapter, error) {
	a, ok := r.Adapters[platform]
	if !ok {
		return nil, domain.ErrUnsupportedPlatform
	}
	return a, nil
}

func (r *MockPlatformRegistry) Platforms() []domain.PlatformType {
	out := make([]domain.PlatformType, 0, len(r.Adapters))
	for p := range r.Adapters {
		out = append(out, p)
	}
	return out
}
