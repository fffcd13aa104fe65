package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie carrying the signed session id.
const CookieName = "shopfront_session"

// Signer issues and verifies session cookies. A cookie value is an HS256
// JWT whose subject is the session id.
type Signer struct {
	key []byte
	ttl time.Duration
}

// NewSigner creates a Signer. An empty secret gets a random key, which
// invalidates every cookie on restart.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating session key: %w", err)
		}
	}
	return &Signer{key: key, ttl: ttl}, nil
}

// Sign returns the cookie value for sessionID.
func (s *Signer) Sign(sessionID string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  sessionID,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Verify checks value and returns the session id it names.
func (s *Signer) Verify(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("invalid session cookie: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("invalid session cookie: no subject")
	}
	return claims.Subject, nil
}
