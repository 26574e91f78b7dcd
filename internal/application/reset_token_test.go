package application

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResetToken(t *testing.T) {
	plain, hash, err := NewResetToken()
	require.NoError(t, err)

	// 20 random bytes, hex-encoded
	raw, err := hex.DecodeString(plain)
	require.NoError(t, err)
	assert.Len(t, raw, resetTokenBytes)

	assert.NotEqual(t, plain, hash)
	assert.Equal(t, HashResetToken(plain), hash)
}

func TestNewResetTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		plain, _, err := NewResetToken()
		require.NoError(t, err)
		assert.False(t, seen[plain], "token generated twice")
		seen[plain] = true
	}
}

func TestHashResetToken(t *testing.T) {
	h1 := HashResetToken("some token")
	h2 := HashResetToken("some token")
	h3 := HashResetToken("another token")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)

	// sha256 hex digest
	raw, err := hex.DecodeString(h1)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}
