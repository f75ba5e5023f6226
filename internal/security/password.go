package security

import (
	"errors"

	"pomodoro/internal/apperror"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes password with bcrypt. Input over bcrypt's 72-byte limit
// is reported as a validation error on the password field.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperror.Validation("Request validation failed", []apperror.FieldError{
			{Field: "password", Tag: "bcryptmax", Message: "must be at most 72 bytes"},
		})
	}

	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
