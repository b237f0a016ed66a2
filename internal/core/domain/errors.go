package domain

import (
	"errors"
)

var (
	// ErrDuplicateEmail and ErrDuplicateUsername are returned by account
	// creation when the unique field is already taken.
	ErrDuplicateEmail    = errors.New("account with this email already exists")
	ErrDuplicateUsername = errors.New("account with this username already exists")

	// ErrInvalidCredentials covers both "no such account" and "wrong
	// password" so the caller cannot tell which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken covers malformed, forged and expired tokens alike.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrInvalidAPIKey covers unknown, revoked and expired keys alike.
	ErrInvalidAPIKey = errors.New("invalid or inactive API key")

	// ErrNotFound is returned for missing resources and for resources
	// owned by a different account, to avoid leaking existence.
	ErrNotFound = errors.New("not found")

	ErrHashMismatch = errors.New("hash does not match password")
)
