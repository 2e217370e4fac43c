package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every validation failure: malformed input, bad
// signature, expired claims. Callers must not branch on the underlying
// cause; the collapsed error avoids leaking an oracle to clients. The
// wrapped detail is for logs only.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and validates signed session tokens.
// It is purely computational and safe for concurrent use.
type TokenManager struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewTokenManager creates a TokenManager with the given HS256 signing key
// and token lifetime.
func NewTokenManager(signingKey []byte, ttl time.Duration) (*TokenManager, error) {
	if len(signingKey) == 0 {
		return nil, errors.New("signing key must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %s", ttl)
	}
	return &TokenManager{
		signingKey: signingKey,
		ttl:        ttl,
		now:        time.Now,
	}, nil
}

// Issue mints a signed token carrying the subject, an issued-at timestamp
// and an absolute expiry. The token is stateless: nothing is persisted.
func (m *TokenManager) Issue(subject string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Validate checks the token's signature and expiry and returns its subject.
// Every failure mode wraps ErrInvalidToken.
func (m *TokenManager) Validate(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return m.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims.Subject, nil
}

// TTL returns the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}
