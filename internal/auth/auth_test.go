package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

type memUsers struct {
	byEmail map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*models.User{}}
}

func (m *memUsers) CreateUser(_ context.Context, user *models.User) error {
	m.byEmail[user.Email] = user
	return nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", email, storage.ErrNotFound)
	}
	return u, nil
}

func newTestAuthenticator() (*PasswordAuthenticator, *memUsers) {
	users := newMemUsers()
	a := NewPasswordAuthenticator(users)
	a.cost = bcrypt.MinCost
	return a, users
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		userName string
		password string
		wantErr  error
	}{
		{"valid", "Alice@Example.com", "Alice", "password123", nil},
		{"weak password", "bob@example.com", "Bob", "short", ErrWeakPassword},
		{"bad email", "not-an-email", "Carol", "password123", ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestAuthenticator()
			user, err := a.Register(ctx, tt.email, tt.userName, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if user.Email != strings.ToLower(tt.email) {
				t.Errorf("Email = %q, want lowercased", user.Email)
			}
			if user.PasswordHash == tt.password {
				t.Error("Password stored in plain text")
			}
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		a, _ := newTestAuthenticator()
		if _, err := a.Register(ctx, "alice@example.com", "Alice", "password123"); err != nil {
			t.Fatalf("first Register failed: %v", err)
		}
		_, err := a.Register(ctx, "ALICE@example.com", "Alice", "password123")
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("Expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("blank name defaults to local part", func(t *testing.T) {
		a, _ := newTestAuthenticator()
		user, err := a.Register(ctx, "dora@example.com", "  ", "password123")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if user.Name != "dora" {
			t.Errorf("Name = %q, want dora", user.Name)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuthenticator()
	registered, err := a.Register(ctx, "alice@example.com", "Alice", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := a.Authenticate(ctx, " alice@example.com", "password123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("Authenticated %s, want %s", user.ID, registered.ID)
	}

	for _, tc := range []struct{ email, password string }{
		{"alice@example.com", "wrong-password"},
		{"nobody@example.com", "password123"},
		{"garbage", "password123"},
	} {
		if _, err := a.Authenticate(ctx, tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate(%q) error = %v, want ErrInvalidCredentials", tc.email, err)
		}
	}
}

func TestJWTManager(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	t.Run("round trip", func(t *testing.T) {
		m := NewJWTManager("secret", time.Hour)
		token, err := m.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		claims, err := m.Validate(token)
		if err != nil {
			t.Fatalf("Validate failed: %v", err)
		}
		if claims.UserID != "user-1" || claims.Email != "alice@example.com" {
			t.Errorf("Unexpected claims: %+v", claims)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, _ := NewJWTManager("secret", time.Hour).Generate(user)
		_, err := NewJWTManager("other", time.Hour).Validate(token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		m := NewJWTManager("secret", time.Minute)
		m.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := m.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		_, err = NewJWTManager("secret", time.Minute).Validate(token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := NewJWTManager("secret", time.Hour).Validate("not.a.token")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}
