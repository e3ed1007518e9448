// Package auth issues and checks the credentials that establish who is asking.
package auth

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrUnauthenticated is returned when a request carries no resolvable identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator verifies credentials and creates accounts.
// Password is the only implementation; the interface keeps the services independent of it.
type Authenticator interface {
	// Register creates an account for email, failing with ErrEmailExists if one exists.
	Register(ctx context.Context, email, name, credential string) (*models.User, error)

	// Authenticate returns the account for email if credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks a credential before it is stored.
	ValidateCredential(credential string) error
}
