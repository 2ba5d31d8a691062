package user

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a user cannot be located.
	ErrNotFound = errors.New("user: not found")
	// ErrIDRequired is returned when a user is saved without an id.
	ErrIDRequired = errors.New("user: id is required")
	// ErrEmailRequired is returned when a user is saved without an email.
	ErrEmailRequired = errors.New("user: email is required")
	// ErrEmailTaken is returned on duplicate registration.
	ErrEmailTaken = errors.New("user: email already registered")
)

// ID identifies a user row. Chat and items reference users by ID only.
type ID string

// User is a profile row backing the marketplace identity.
type User struct {
	ID           ID
	Name         string
	Email        string
	AvatarURL    string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail lowercases and trims an email for lookup keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
