package application

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// Reset tokens are high-entropy and single-use, so a fast cryptographic
// hash is enough here; bcrypt stays reserved for user-chosen passwords.
// Only the hash is persisted, the plaintext goes out by email once.

const resetTokenBytes = 20

// NewResetToken generates a random plaintext reset token and the SHA-256
// digest that gets stored on the account.
func NewResetToken() (plain string, hash string, err error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(b)
	return plain, HashResetToken(plain), nil
}

// HashResetToken recomputes the stored digest for a plaintext token.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
