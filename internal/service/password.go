package service

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the user does not exist, so a miss costs
// the same bcrypt time as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("filehost-dummy-password"), bcrypt.DefaultCost)

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// HashPassword is exported for the admin CLI.
func HashPassword(password string) (string, error) {
	return hashPassword(password)
}
