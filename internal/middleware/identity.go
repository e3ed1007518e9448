package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// UserLookup is the subset of storage.UserStore needed to resolve an identity.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// IdentityResolver maps the authenticated user ID in a request context to a stored user.
type IdentityResolver struct {
	users UserLookup
}

// NewIdentityResolver returns a resolver reading from users.
func NewIdentityResolver(users UserLookup) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve returns the current user. A missing ID, or an ID whose user has been
// deleted since the token was issued, yields auth.ErrUnauthenticated.
func (r *IdentityResolver) Resolve(ctx context.Context) (*models.User, error) {
	userID := GetUserID(ctx)
	if userID == "" {
		return nil, auth.ErrUnauthenticated
	}

	user, err := r.users.GetUserByID(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: user %s no longer exists", auth.ErrUnauthenticated, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}
	return user, nil
}
