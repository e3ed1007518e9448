package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
)

const minPasswordLength = 8

// UserStorage is the subset of storage.UserStore the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PasswordAuthenticator authenticates with bcrypt-hashed passwords.
type PasswordAuthenticator struct {
	storage UserStorage
	cost    int
}

var _ Authenticator = (*PasswordAuthenticator)(nil)

// NewPasswordAuthenticator returns an authenticator backed by storage.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{storage: storage, cost: bcrypt.DefaultCost}
}

// ValidateCredential enforces the minimum password length.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register hashes credential and stores a new user.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, name, credential string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	_, err = a.storage.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailExists
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if strings.TrimSpace(name) == "" {
		name = email[:strings.IndexByte(email, '@')]
	}
	user := models.NewUser(email, strings.TrimSpace(name), string(hashed))
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate checks credential against the stored hash.
// Unknown emails and wrong passwords fail alike.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := a.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}
