package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("produces encoded argon2id hash", func(t *testing.T) {
		hash, err := HashPassword("correct-horse-battery")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	})

	t.Run("same password hashes differently", func(t *testing.T) {
		first, err := HashPassword("correct-horse-battery")
		require.NoError(t, err)
		second, err := HashPassword("correct-horse-battery")
		require.NoError(t, err)
		assert.NotEqual(t, first, second, "salts must differ")
	})

	t.Run("empty password is rejected", func(t *testing.T) {
		_, err := HashPassword("")
		assert.Error(t, err)
	})

	t.Run("oversized password is rejected", func(t *testing.T) {
		_, err := HashPassword(strings.Repeat("a", maxPasswordLength+1))
		assert.Error(t, err)
	})
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery")
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		assert.True(t, VerifyPassword(hash, "correct-horse-battery"))
	})

	t.Run("wrong password", func(t *testing.T) {
		assert.False(t, VerifyPassword(hash, "wrong-password"))
	})

	t.Run("malformed hash verifies false", func(t *testing.T) {
		assert.False(t, VerifyPassword("not-a-hash", "correct-horse-battery"))
		assert.False(t, VerifyPassword("$argon2id$v=19$garbage", "correct-horse-battery"))
	})

	t.Run("oversized password verifies false", func(t *testing.T) {
		assert.False(t, VerifyPassword(hash, strings.Repeat("a", maxPasswordLength+1)))
	})
}
