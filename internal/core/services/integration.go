package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driving"
)

// Ensure integrationService implements IntegrationService
var _ driving.IntegrationService = (*integrationService)(nil)

const (
	// DefaultStateTTL bounds how long a started authorization may wait for its callback.
	DefaultStateTTL = 10 * time.Minute

	// DefaultCredentialTTL bounds how long an exchanged credential waits for retrieval.
	DefaultCredentialTTL = 10 * time.Minute

	// nonceBytes is the entropy of the state nonce.
	nonceBytes = 32
)

// CloseWindowHTML is returned to the browser after a successful callback.
const CloseWindowHTML = `<html>
    <script>
        window.close();
    </script>
</html>
`

// IntegrationServiceConfig holds configuration for the integration service.
type IntegrationServiceConfig struct {
	// Store holds pending states, PKCE verifiers and exchanged credentials.
	Store driven.KVStore

	// Codec encodes the state token carried through the redirect.
	Codec driven.StateCodec

	// Platforms resolves the adapter for each platform.
	Platforms driven.PlatformRegistry

	// Normalisers maps raw records to IntegrationItems.
	Normalisers driven.NormaliserRegistry

	// StateTTL and CredentialTTL default to 10 minutes.
	StateTTL      time.Duration
	CredentialTTL time.Duration

	Logger *slog.Logger
}

// integrationService implements the IntegrationService interface.
type integrationService struct {
	store         driven.KVStore
	codec         driven.StateCodec
	platforms     driven.PlatformRegistry
	normalisers   driven.NormaliserRegistry
	stateTTL      time.Duration
	credentialTTL time.Duration
	logger        *slog.Logger
}

// NewIntegrationService creates a new integration service.
func NewIntegrationService(cfg IntegrationServiceConfig) driving.IntegrationService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	stateTTL := cfg.StateTTL
	if stateTTL <= 0 {
		stateTTL = DefaultStateTTL
	}

	credentialTTL := cfg.CredentialTTL
	if credentialTTL <= 0 {
		credentialTTL = DefaultCredentialTTL
	}

	return &integrationService{
		store:         cfg.Store,
		codec:         cfg.Codec,
		platforms:     cfg.Platforms,
		normalisers:   cfg.Normalisers,
		stateTTL:      stateTTL,
		credentialTTL: credentialTTL,
		logger:        logger,
	}
}

// Authorize starts an OAuth authorization flow.
// It stores the encoded state (and a PKCE verifier when the platform needs one)
// and returns the platform's authorization URL.
func (s *integrationService) Authorize(ctx context.Context, req driving.AuthorizeRequest) (*driving.AuthorizeResponse, error) {
	if err := requireIdentity(req.UserID, req.OrgID); err != nil {
		return nil, err
	}

	adapter, err := s.platforms.Get(req.Platform)
	if err != nil {
		return nil, err
	}

	nonce, err := generateNonce()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	token, err := s.codec.Encode(domain.AuthorizationState{
		Nonce:  nonce,
		UserID: req.UserID,
		OrgID:  req.OrgID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}

	var codeChallenge string
	if adapter.UsesPKCE() {
		codeVerifier, err := generateRandomString(64)
		if err != nil {
			return nil, fmt.Errorf("generate code verifier: %w", err)
		}
		codeChallenge = generateCodeChallenge(codeVerifier)

		key := verifierKey(req.Platform, req.OrgID, req.UserID)
		if err := s.store.Set(ctx, key, []byte(codeVerifier), s.stateTTL); err != nil {
			return nil, fmt.Errorf("save code verifier: %w", err)
		}
	}

	expiresAt := time.Now().Add(s.stateTTL)
	key := stateKey(req.Platform, req.OrgID, req.UserID)
	if err := s.store.Set(ctx, key, []byte(token), s.stateTTL); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}

	s.logger.Info("authorization started",
		"platform", req.Platform,
		"org_id", req.OrgID,
		"user_id", req.UserID,
	)

	return &driving.AuthorizeResponse{
		AuthorizationURL: adapter.AuthorizationURL(token, codeChallenge),
		ExpiresAt:        expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// Callback handles the redirect from the platform.
// The identity inside the state token is only used to locate the stored copy;
// the flow proceeds only when the stored nonce matches the presented one.
func (s *integrationService) Callback(ctx context.Context, req driving.CallbackRequest) (*driving.CallbackResponse, error) {
	if req.Error != "" {
		return nil, &domain.IntegrationError{
			Kind:    domain.KindAuthorizationDenied,
			Message: req.Error,
			Detail:  req.ErrorDescription,
		}
	}

	adapter, err := s.platforms.Get(req.Platform)
	if err != nil {
		return nil, err
	}

	presented, err := s.codec.Decode(req.State)
	if err != nil {
		return nil, &domain.IntegrationError{
			Kind:    domain.KindMalformedState,
			Message: "state could not be decoded",
			Detail:  err.Error(),
		}
	}
	if err := presented.Validate(); err != nil {
		return nil, err
	}

	key := stateKey(req.Platform, presented.OrgID, presented.UserID)
	stored, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	if stored == nil || !s.nonceMatches(stored, presented.Nonce) {
		s.logger.Warn("state mismatch",
			"platform", req.Platform,
			"org_id", presented.OrgID,
			"user_id", presented.UserID,
			"stored", stored != nil,
		)
		return nil, domain.NewIntegrationError(domain.KindStateMismatch, "state does not match")
	}

	pending := []string{key}
	var codeVerifier string
	if adapter.UsesPKCE() {
		vKey := verifierKey(req.Platform, presented.OrgID, presented.UserID)
		v, err := s.store.Get(ctx, vKey)
		if err != nil {
			return nil, fmt.Errorf("get code verifier: %w", err)
		}
		if v == nil {
			// The flow cannot complete without the verifier; drop the state too.
			if err := s.store.Delete(ctx, key); err != nil {
				return nil, fmt.Errorf("delete state: %w", err)
			}
			return nil, domain.NewIntegrationError(domain.KindStateMismatch, "code verifier is missing")
		}
		codeVerifier = string(v)
		pending = append(pending, vKey)
	}

	// The exchange and the state cleanup are independent; both finish before we
	// return, so a failed exchange still leaves the state consumed.
	var (
		g        errgroup.Group
		body     []byte
		exchange error
	)
	g.Go(func() error {
		body, exchange = adapter.ExchangeToken(ctx, req.Code, codeVerifier)
		return nil
	})
	g.Go(func() error {
		for _, k := range pending {
			if err := s.store.Delete(ctx, k); err != nil {
				return fmt.Errorf("delete %s: %w", k, err)
			}
		}
		return nil
	})
	cleanup := g.Wait()

	if exchange != nil {
		s.logger.Warn("token exchange failed",
			"platform", req.Platform,
			"org_id", presented.OrgID,
			"user_id", presented.UserID,
			"error", exchange,
		)
		if errors.Is(exchange, domain.ErrTokenExchangeFailed) {
			return nil, exchange
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenExchangeFailed, exchange)
	}
	if cleanup != nil {
		return nil, fmt.Errorf("consume state: %w", cleanup)
	}
	if !json.Valid(body) {
		return nil, domain.NewUpstreamError(domain.KindTokenExchangeFailed, "token response is not JSON", 0, body)
	}

	credKey := credentialsKey(req.Platform, presented.OrgID, presented.UserID)
	if err := s.store.Set(ctx, credKey, body, s.credentialTTL); err != nil {
		return nil, fmt.Errorf("save credentials: %w", err)
	}

	s.logger.Info("authorization completed",
		"platform", req.Platform,
		"org_id", presented.OrgID,
		"user_id", presented.UserID,
	)

	return &driving.CallbackResponse{HTML: CloseWindowHTML}, nil
}

// Credentials returns the stored credential and deletes it.
// Retrieval is at-most-once: a caller that loses the response must re-authorize.
func (s *integrationService) Credentials(ctx context.Context, req driving.CredentialsRequest) (json.RawMessage, error) {
	if err := requireIdentity(req.UserID, req.OrgID); err != nil {
		return nil, err
	}
	if _, err := s.platforms.Get(req.Platform); err != nil {
		return nil, err
	}

	key := credentialsKey(req.Platform, req.OrgID, req.UserID)
	payload, err := s.take(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	if payload == nil {
		return nil, domain.NewIntegrationError(domain.KindCredentialNotFound, "no credentials found")
	}

	s.logger.Info("credentials handed off",
		"platform", req.Platform,
		"org_id", req.OrgID,
		"user_id", req.UserID,
	)

	return json.RawMessage(payload), nil
}

// take performs a destructive read, atomically when the store supports it.
func (s *integrationService) take(ctx context.Context, key string) ([]byte, error) {
	if taker, ok := s.store.(driven.Taker); ok {
		return taker.Take(ctx, key)
	}

	payload, err := s.store.Get(ctx, key)
	if err != nil || payload == nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return nil, err
	}
	return payload, nil
}

// nonceMatches decodes the stored token and compares nonces in constant time.
func (s *integrationService) nonceMatches(stored []byte, nonce string) bool {
	saved, err := s.codec.Decode(string(stored))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(saved.Nonce), []byte(nonce)) == 1
}

func stateKey(platform domain.PlatformType, orgID, userID string) string {
	return fmt.Sprintf("state:%s:%s:%s", platform, orgID, userID)
}

func credentialsKey(platform domain.PlatformType, orgID, userID string) string {
	return fmt.Sprintf("credentials:%s:%s:%s", platform, orgID, userID)
}

func verifierKey(platform domain.PlatformType, orgID, userID string) string {
	return fmt.Sprintf("verifier:%s:%s:%s", platform, orgID, userID)
}

func requireIdentity(userID, orgID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(orgID) == "" {
		return fmt.Errorf("%w: user_id and org_id are required", domain.ErrInvalidInput)
	}
	if strings.Contains(userID, domain.KeySeparator) || strings.Contains(orgID, domain.KeySeparator) {
		return fmt.Errorf("%w: user_id and org_id must not contain %q", domain.ErrInvalidInput, domain.KeySeparator)
	}
	return nil
}

// generateNonce returns nonceBytes of randomness, base64url encoded without padding.
func generateNonce() (string, error) {
	raw := make([]byte, nonceBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// generateRandomString generates a cryptographically secure random string.
func generateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:length], nil
}

// generateCodeChallenge creates a PKCE code challenge from a verifier (S256 method).
func generateCodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}
