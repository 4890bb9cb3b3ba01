package identity

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"mobywatel/pkg/apperrors"
)

// hashPassword creates a bcrypt hash for storage.
func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperrors.New(apperrors.CodeValidation, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// verifyPassword checks a plaintext password against its stored hash.
func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
