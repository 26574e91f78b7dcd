package helpers

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor the dashboard has always used for
// stored credentials. Changing it only affects newly hashed passwords;
// verification reads the cost embedded in each digest.
const bcryptCost = 10

// HashPassword hashes the plain text password using bcrypt.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches the stored bcrypt digest.
// It returns false for malformed digests instead of an error.
func CheckPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
