package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var validEmailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const passwordSpecials = "@$!%*?&"

// ValidationError marks input rejections so the HTTP layer can map them
// to 400 instead of 500.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ValidateUsername checks the 3-50 character bound.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return validationErrorf("username must be at least 3 characters")
	}
	if len(username) > 50 {
		return validationErrorf("username must be less than 50 characters")
	}
	return nil
}

// ValidateEmail checks basic email syntax.
func ValidateEmail(email string) error {
	if email == "" {
		return validationErrorf("email cannot be empty")
	}
	if !validEmailRegex.MatchString(email) {
		return validationErrorf("invalid email format")
	}
	return nil
}

// ValidatePassword enforces the registration password policy: at least 8
// characters with one lowercase letter, one uppercase letter, one digit
// and one special character.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return validationErrorf("password must be at least 8 characters")
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasLower || !hasUpper || !hasDigit || !strings.ContainsAny(password, passwordSpecials) {
		return validationErrorf("password must contain at least one uppercase letter, one lowercase letter, one number, and one special character")
	}
	return nil
}

// ValidateKeyName checks the 1-100 character bound for API key labels.
func ValidateKeyName(name string) error {
	if name == "" {
		return validationErrorf("API key name is required")
	}
	if len(name) > 100 {
		return validationErrorf("API key name exceeds 100 characters")
	}
	return nil
}
