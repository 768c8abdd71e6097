// Package auth mints and verifies the bearer tokens used by the
// "Authorization: Token <value>" scheme.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "treks"

// ErrInvalidToken is returned for tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the identity baked into an issued token.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Manager issues and verifies HS256 tokens. A Manager with no secret is
// disabled: token checks are skipped entirely.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a Manager. An empty secret disables authentication.
func NewManager(secret string, ttl time.Duration) *Manager {
	m := &Manager{
		ttl: ttl,
		now: time.Now,
	}
	if s := strings.TrimSpace(secret); s != "" {
		m.secret = []byte(s)
	}
	return m
}

// Enabled reports whether token verification is configured.
func (m *Manager) Enabled() bool {
	return len(m.secret) > 0
}

// Issue mints a token for the given identity.
func (m *Manager) Issue(name, email string) (string, error) {
	if !m.Enabled() {
		return "", errors.New("authentication is not configured")
	}

	now := m.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Name:  name,
		Email: email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims.
func (m *Manager) Verify(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &claims, nil
}
