package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted one-way digest of the raw password.
// bcrypt embeds a per-hash random salt and an adaptive work factor in the
// encoded output.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a raw password against a stored hash. The comparison
// inside bcrypt is constant time.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
