// Package authutil validates and hashes account passwords.
package authutil

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128

	// BcryptCost is fixed at 10 so hashes stay verifiable across
	// deployments with differing hardware.
	BcryptCost = 10
)

var (
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters.")
	ErrPasswordTooLong  = errors.New("Password must be less than 128 characters.")
	ErrPasswordCommon   = errors.New("This password is too common. Please choose a different one.")
)

// blockedPasswords are rejected outright regardless of length.
var blockedPasswords = func() map[string]struct{} {
	list := []string{
		"123456", "1234567", "12345678", "123456789",
		"password", "password1", "qwerty", "qwerty123",
		"abc123", "abcdef", "111111", "000000", "123123", "654321",
		"iloveyou", "monkey", "dragon", "master", "letmein",
		"welcome", "login", "admin", "princess", "sunshine",
		"football", "baseball", "soccer", "hockey", "batman", "superman",
	}
	m := make(map[string]struct{}, len(list))
	for _, p := range list {
		m[p] = struct{}{}
	}
	return m
}()

// ValidatePassword reports whether a candidate password is acceptable.
// The returned error message is safe to show to the user.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, blocked := blockedPasswords[strings.ToLower(password)]; blocked {
		return ErrPasswordCommon
	}
	return nil
}

// HashPassword produces a bcrypt hash at BcryptCost. Validate the
// password with ValidatePassword before hashing.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
