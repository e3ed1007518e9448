package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// testUserHeader names the user a test request acts as.
const testUserHeader = "X-Test-User"

// testAuthInterceptor trusts testUserHeader in place of a bearer token.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id := req.Header().Get(testUserHeader); id != "" {
				ctx = middleware.WithUserID(ctx, id)
			}
			return next(ctx, req)
		}
	}
}

type testEnv struct {
	store   storage.Store
	ledger  api.LedgerServiceClient
	records api.RecordServiceClient
	auth    api.AuthServiceClient
	ledgerS *LedgerService
}

// setupTestServer serves every service over a temp-file SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "splitledger-service-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	store, err := sqlite.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	identity := middleware.NewIdentityResolver(store)
	interceptors := connect.WithInterceptors(testAuthInterceptor())

	ledgerSvc := NewLedgerService(store, identity, LedgerConfig{Location: time.UTC, GroupConcurrency: 2}, logger)
	recordSvc := NewRecordService(store, identity, logger)
	authSvc := NewAuthService(
		auth.NewPasswordAuthenticator(store),
		auth.NewJWTManager("test-secret", time.Hour),
		identity, store, logger,
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewLedgerServiceHandler(ledgerSvc, interceptors))
	mux.Handle(api.NewRecordServiceHandler(recordSvc, interceptors))
	mux.Handle(api.NewAuthServiceHandler(authSvc, interceptors))
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
		os.RemoveAll(tmpDir)
	})

	return &testEnv{
		store:   store,
		ledger:  api.NewLedgerServiceClient(http.DefaultClient, server.URL),
		records: api.NewRecordServiceClient(http.DefaultClient, server.URL),
		auth:    api.NewAuthServiceClient(http.DefaultClient, server.URL),
		ledgerS: ledgerSvc,
	}
}

// as builds a request made by userID.
func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, userID)
	return req
}

func (e *testEnv) user(t *testing.T, id, name string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Name: name, Email: id + "@example.com"}
	if err := e.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", id, err)
	}
	return u
}

func (e *testEnv) group(t *testing.T, name string, members ...string) *models.Group {
	t.Helper()
	g := &models.Group{Name: name, CreatedBy: members[0]}
	for _, m := range members {
		g.Members = append(g.Members, models.GroupMember{UserID: m})
	}
	if err := e.store.CreateGroup(context.Background(), g); err != nil {
		t.Fatalf("CreateGroup(%s) failed: %v", name, err)
	}
	return g
}

// expense stores an expense directly, bypassing request validation.
func (e *testEnv) expense(t *testing.T, exp *models.Expense) {
	t.Helper()
	if exp.CreatedBy == "" {
		exp.CreatedBy = exp.PaidByUserID
	}
	if err := e.store.CreateExpense(context.Background(), exp); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
}

func (e *testEnv) settlement(t *testing.T, s *models.Settlement) {
	t.Helper()
	if s.CreatedBy == "" {
		s.CreatedBy = s.PaidByUserID
	}
	if err := e.store.CreateSettlement(context.Background(), s); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}
