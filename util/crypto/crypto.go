// Package crypto hashes and verifies account passwords with bcrypt.
package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// maxInput is the number of password bytes bcrypt reads; longer input is
// rejected by the library, so it is cut here instead.
const maxInput = 72

func input(password string) []byte {
	b := []byte(password)
	if len(b) > maxInput {
		b = b[:maxInput]
	}
	return b
}

// HashPasswordAsBcrypt generates a bcrypt hash of the given password.
func HashPasswordAsBcrypt(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(input(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash verifies if the given password matches the bcrypt hash.
func CheckPasswordHash(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), input(password))
	return err == nil
}
