package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/emilythestrangee/tastemap/backend/internal/apperror"
)

// MaxPasswordBytes is the most bcrypt will hash.
const MaxPasswordBytes = 72

// HashPassword returns a Validation error for passwords longer than
// MaxPasswordBytes. Length is counted in bytes, not characters.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", apperror.Validation(fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperror.Validation(fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes))
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. An empty hash never
// matches, which is how soft-deleted accounts are locked out.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
