package store

import (
	"context"
	"time"
)

// User is a login identity known to the broker's credential directory.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore handles credential persistence. The broker's own state
// (clients, channels, pending syncs) never touches it.
type UserStore interface {
	// CreateUser creates a new user with hashed password.
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// Close closes the underlying database connection.
	Close() error
}
