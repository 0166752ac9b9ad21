package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/datadrop/datadrop/internal/shared"
)

// TokenManager signs and verifies short-lived HS256 bearer tokens.
// Tokens carry identity only; roles are always re-read from the store.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager constructs a TokenManager with a symmetric secret.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("auth: token secret is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("auth: token ttl must be positive")
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the configured expiry window.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token bound to the subject email.
func (m *TokenManager) Issue(subject string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(m.now().Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify validates the token's signature and expiry and returns the
// subject email. Any malformed, mis-signed or expired token maps to
// shared.ErrUnauthorized.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return "", shared.ErrUnauthorized
	}
	if claims.Subject == "" {
		return "", shared.ErrUnauthorized
	}
	return claims.Subject, nil
}
