package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique).
	// Used for login.
	Email string

	// AvatarURL is an optional profile picture reference.
	AvatarURL string

	// PasswordHash is the bcrypt hash of the user's password.
	// Empty for accounts synced from an external identity provider.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile sync.
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, name, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
