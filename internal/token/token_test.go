package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	raw, err := m.Issue(42, "0900000000", "user")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := m.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.AccountID)
	assert.Equal(t, "0900000000", claims.Phone)
	assert.Equal(t, "user", claims.Role)
}

func TestVerify_Expired(t *testing.T) {
	// TTL in the past: the token is expired the moment it is issued.
	m := NewManager("test-secret", -time.Minute)

	raw, err := m.Issue(1, "0900000000", "user")
	require.NoError(t, err)

	_, err = m.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WithinLifetime(t *testing.T) {
	// 59 minutes into a one-hour lifetime is still valid; simulate by
	// issuing with the remaining minute as TTL.
	m := NewManager("test-secret", time.Minute)

	raw, err := m.Issue(1, "0900000000", "user")
	require.NoError(t, err)

	_, err = m.Verify(raw)
	assert.NoError(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	raw, err := issuer.Issue(1, "0900000000", "user")
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	_, err := m.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
