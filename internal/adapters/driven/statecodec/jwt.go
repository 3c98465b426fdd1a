package statecodec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
	"github.com/custodia-labs/sercha-bridge/internal/core/ports/driven"
)

// Ensure JWT implements the interface.
var _ driven.StateCodec = (*JWT)(nil)

const stateIssuer = "sercha-bridge"

// stateClaims wraps domain.AuthorizationState for JWT compatibility
type stateClaims struct {
	Nonce  string `json:"state"`
	UserID string `json:"user_id"`
	OrgID  string `json:"org_id"`
	jwt.RegisteredClaims
}

// JWT encodes state as an HS256-signed token that expires with the stored copy.
// Tampered or expired tokens fail to decode before the store is consulted.
type JWT struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWT creates a signing codec. ttl should match the state TTL used by the broker.
func NewJWT(secret string, ttl time.Duration) (*JWT, error) {
	if len(secret) < 16 {
		return nil, errors.New("state signing secret must be at least 16 bytes")
	}
	return &JWT{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Encode signs the state.
func (c *JWT) Encode(state domain.AuthorizationState) (string, error) {
	now := c.now()
	claims := stateClaims{
		Nonce:  state.Nonce,
		UserID: state.UserID,
		OrgID:  state.OrgID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    stateIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry and extracts the state.
func (c *JWT) Decode(tokenString string) (*domain.AuthorizationState, error) {
	token, err := jwt.ParseWithClaims(tokenString, &stateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	},
		jwt.WithIssuer(stateIssuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}

	claims, ok := token.Claims.(*stateClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid state claims")
	}

	return &domain.AuthorizationState{
		Nonce:  claims.Nonce,
		UserID: claims.UserID,
		OrgID:  claims.OrgID,
	}, nil
}
