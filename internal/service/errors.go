package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	// ErrMalformedInput marks a request that fails structural checks.
	ErrMalformedInput = errors.New("malformed input")
	// ErrNotMember is returned when the caller asks about a group they are not in.
	ErrNotMember = errors.New("not a member of this group")
)

// IdentityResolver resolves the caller of the current request.
type IdentityResolver interface {
	Resolve(ctx context.Context) (*models.User, error)
}

// malformed wraps ErrMalformedInput with a reason and maps it to InvalidArgument.
func malformed(format string, args ...any) *connect.Error {
	return connect.NewError(connect.CodeInvalidArgument,
		fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...)))
}

// resolveSubject resolves the caller once per request.
func resolveSubject(ctx context.Context, identity IdentityResolver, logger *slog.Logger) (*models.User, error) {
	user, err := identity.Resolve(ctx)
	if err == nil {
		return user, nil
	}
	if errors.Is(err, auth.ErrUnauthenticated) {
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}
	logger.Error("Failed to resolve caller", "error", err)
	return nil, connect.NewError(connect.CodeInternal, err)
}

// storeError maps a storage failure to a Connect error.
func storeError(logger *slog.Logger, op string, err error) *connect.Error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	logger.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, err)
}
