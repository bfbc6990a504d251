package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager(t *testing.T) {
	secret := []byte("test-signing-secret")

	t.Run("round trip", func(t *testing.T) {
		m, err := NewTokenManager(secret, time.Hour)
		require.NoError(t, err)

		token, err := m.Generate("admin@example.com", "admin")
		require.NoError(t, err)

		claims, err := m.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", claims.Identifier)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("empty secret is rejected", func(t *testing.T) {
		_, err := NewTokenManager(nil, time.Hour)
		assert.Error(t, err)
	})

	t.Run("wrong secret fails validation", func(t *testing.T) {
		m1, err := NewTokenManager(secret, time.Hour)
		require.NoError(t, err)
		m2, err := NewTokenManager([]byte("different-secret"), time.Hour)
		require.NoError(t, err)

		token, err := m1.Generate("admin@example.com", "admin")
		require.NoError(t, err)

		_, err = m2.Validate(token)
		assert.Error(t, err)
	})

	t.Run("expired token fails validation", func(t *testing.T) {
		m, err := NewTokenManager(secret, time.Hour)
		require.NoError(t, err)
		m.ttl = -time.Minute

		token, err := m.Generate("admin@example.com", "admin")
		require.NoError(t, err)

		_, err = m.Validate(token)
		assert.Error(t, err)
	})

	t.Run("garbage token fails validation", func(t *testing.T) {
		m, err := NewTokenManager(secret, time.Hour)
		require.NoError(t, err)

		_, err = m.Validate("not.a.token")
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.NotEqual(t, "correct horse", hash)
}

func TestBcryptVerifier(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	v := NewBcryptVerifier("admin@example.com", hash)

	assert.True(t, v.Verify("admin@example.com", "correct horse"))
	assert.False(t, v.Verify("admin@example.com", "wrong"))
	assert.False(t, v.Verify("other@example.com", "correct horse"))
	assert.False(t, v.Verify("", ""))
}
