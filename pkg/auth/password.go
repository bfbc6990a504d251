package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash against a plaintext password.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BcryptVerifier checks a single admin credential pair against a stored
// bcrypt hash. Both parts of the pair are checked on every attempt so a
// wrong identifier costs the same as a wrong secret.
type BcryptVerifier struct {
	identifier string
	secretHash string
}

// NewBcryptVerifier builds a verifier for one identifier and its bcrypt
// secret hash. The hash comes from deployment configuration.
func NewBcryptVerifier(identifier, secretHash string) *BcryptVerifier {
	return &BcryptVerifier{identifier: identifier, secretHash: secretHash}
}

// Verify reports whether the presented credentials match. It never reveals
// which part of the pair was wrong.
func (v *BcryptVerifier) Verify(identifier, secret string) bool {
	idOK := subtle.ConstantTimeCompare([]byte(v.identifier), []byte(identifier)) == 1
	secretOK := bcrypt.CompareHashAndPassword([]byte(v.secretHash), []byte(secret)) == nil
	return idOK && secretOK
}
