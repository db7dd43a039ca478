package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef0")

func TestTokenManager(t *testing.T) {
	t.Run("round-trip", func(t *testing.T) {
		m := NewTokenManager(testKey, 2*time.Hour)

		token, err := m.Issue(42)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		userID, err := m.Parse(token)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), userID)
	})

	t.Run("garbage token", func(t *testing.T) {
		m := NewTokenManager(testKey, 2*time.Hour)

		userID, err := m.Parse("not.a.token")

		assert.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Zero(t, userID)
	})

	t.Run("wrong key", func(t *testing.T) {
		issuer := NewTokenManager(testKey, 2*time.Hour)
		verifier := NewTokenManager([]byte("another-key-that-is-long-enough-x"), 2*time.Hour)

		token, err := issuer.Issue(42)
		require.NoError(t, err)

		userID, err := verifier.Parse(token)

		assert.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Zero(t, userID)
	})

	t.Run("expired token", func(t *testing.T) {
		m := NewTokenManager(testKey, -time.Minute)

		token, err := m.Issue(42)
		require.NoError(t, err)

		userID, err := m.Parse(token)

		assert.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Zero(t, userID)
	})
}
