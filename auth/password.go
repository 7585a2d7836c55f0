package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Credentials is the single admin account.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Check returns ErrInvalidCredentials for an unknown user, a wrong password,
// or when no password hash is configured.
func (c Credentials) Check(username, password string) error {
	if c.PasswordHash == "" {
		return ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))

	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}
