// Package token issues and verifies HS256 session tokens.
//
// A token binds an account identifier, phone, and role. Validity is
// determined purely by signature verification and the embedded expiry;
// nothing is persisted server-side and there is no revocation list.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token fails signature or expiry
// verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the account identity embedded in a session token.
type Claims struct {
	jwt.RegisteredClaims
	AccountID int64  `json:"idaccount"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

// Manager signs and verifies session tokens with a server-held secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a Manager. secret must come from configuration;
// ttl is the token lifetime (one hour in production wiring).
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for the given account identity,
// expiring after the configured TTL.
func (m *Manager) Issue(accountID int64, phone, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		AccountID: accountID,
		Phone:     phone,
		Role:      role,
	})

	return token.SignedString(m.secret)
}

// Verify parses and validates a raw token string and returns its claims.
// Expired or tampered tokens yield ErrInvalidToken.
func (m *Manager) Verify(raw string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
