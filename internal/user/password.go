package user

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	dErrors "authgate/pkg/domain-errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	specialCharacters = "@$!%*?&"
)

// PasswordHasher hashes and checks passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether password matches hash. An empty hash never matches.
func (h *PasswordHasher) Compare(hash, password string) (bool, error) {
	if hash == "" {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("could not verify password: %w", err)
}

// ValidatePassword enforces the registration policy: at least eight
// characters with an upper-case letter, a lower-case letter, a digit and one
// of @$!%*?&.
func ValidatePassword(password string) error {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialCharacters, r):
			special = true
		}
	}

	err := dErrors.New(dErrors.CodeValidation, "password does not meet policy").WithReason("weak_password")
	if len([]rune(password)) < minPasswordLength {
		return err.WithDetail("password", "must be at least 8 characters")
	}
	switch {
	case !upper:
		return err.WithDetail("password", "must contain an upper-case letter")
	case !lower:
		return err.WithDetail("password", "must contain a lower-case letter")
	case !digit:
		return err.WithDetail("password", "must contain a digit")
	case !special:
		return err.WithDetail("password", "must contain one of "+specialCharacters)
	}
	return nil
}
