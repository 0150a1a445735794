package utils

import (
	"strings"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	argon := argon2.DefaultConfig()
	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// VerifyPassword accepts argon2 hashes and bcrypt hashes from imported accounts.
// needsRehash is true when the stored hash is not argon2.
func VerifyPassword(encodedHash, password string) (ok bool, needsRehash bool, err error) {
	if IsLegacyHash(encodedHash) {
		err = bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return false, false, nil
		}
		if err != nil {
			return false, false, err
		}
		return true, true, nil
	}

	ok, err = argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
	if err != nil {
		return false, false, err
	}
	return ok, false, nil
}

func IsLegacyHash(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2a$") ||
		strings.HasPrefix(encodedHash, "$2b$") ||
		strings.HasPrefix(encodedHash, "$2y$")
}
