// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is returned by single-record lookups when the record does not exist.
var ErrNotFound = errors.New("record not found")

// UserStore defines user persistence operations.
type UserStore interface {
	// CreateUser persists a new user. The user.ID field is generated if empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID returns ErrNotFound if no user has the ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByEmail returns ErrNotFound if no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to User.
	// Users that don't exist are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// UpdateUserProfile sets the display name and avatar. Applying the same values twice
	// is a no-op apart from UpdatedAt.
	UpdateUserProfile(ctx context.Context, id, name, avatarURL string) error

	// DeleteUser removes a user. Records referencing the user are left in place.
	DeleteUser(ctx context.Context, id string) error
}

// RecordReader is the read side used by the ledger engine.
type RecordReader interface {
	// ListPersonalExpenses returns expenses without a group that userID paid or has a split in.
	ListPersonalExpenses(ctx context.Context, userID string) ([]models.Expense, error)

	// ListGroupExpenses returns every expense of the group.
	ListGroupExpenses(ctx context.Context, groupID string) ([]models.Expense, error)

	// ListExpensesSince returns expenses of any scope dated at or after since that
	// userID paid or has a split in.
	ListExpensesSince(ctx context.Context, userID string, since time.Time) ([]models.Expense, error)

	// ListPersonalSettlements returns settlements without a group where userID is a party.
	ListPersonalSettlements(ctx context.Context, userID string) ([]models.Settlement, error)

	// ListGroupSettlements returns every settlement of the group.
	ListGroupSettlements(ctx context.Context, groupID string) ([]models.Settlement, error)

	// ListGroupsForUser returns the groups userID is a member of, with their members.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)

	// GetGroup returns ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
}

// RecordWriter is the write side used by the record collaborators, never by the ledger.
type RecordWriter interface {
	// CreateGroup persists a group and its members. IDs and timestamps are generated if unset.
	CreateGroup(ctx context.Context, group *models.Group) error

	// CreateExpense persists an expense and its splits.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// CreateSettlement persists a settlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
}

// Store defines the full storage surface.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	RecordReader
	RecordWriter

	// Close releases any resources held by the store.
	Close() error
}
