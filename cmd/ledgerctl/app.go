package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/report"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/driver"
	"github.com/mmynk/splitledger/pkg/logging"
)

var raw = flag.Bool("raw", false, "print markdown without terminal styling")

// session is an open store and a ledger service acting as one user.
type session struct {
	store  storage.Store
	ledger *service.LedgerService
	writer *report.Writer
	ctx    context.Context
}

// userFlag is embedded by every command that acts as a user.
type userFlag struct {
	userID string
}

func (u *userFlag) register(f *flag.FlagSet) {
	f.StringVar(&u.userID, "user", "", "ID of the user whose ledger is shown (required)")
}

// open loads the configuration and the store, then binds ctx to the user.
func (u *userFlag) open(ctx context.Context) (*session, error) {
	if u.userID == "" {
		return nil, errors.New("-user is required")
	}

	cfg := config.Load()
	if err := cfg.Validate(false); err != nil {
		return nil, err
	}
	logger := logging.Setup(logging.Options{Level: cfg.Level(), Format: cfg.LogFormat})

	store, err := driver.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	ledger := service.NewLedgerService(store, middleware.NewIdentityResolver(store), service.LedgerConfig{
		Location:         cfg.Location(),
		GroupConcurrency: cfg.GroupConcurrency,
	}, logger)

	return &session{
		store:  store,
		ledger: ledger,
		writer: report.New(cfg.Currency),
		ctx:    middleware.WithUserID(ctx, u.userID),
	}, nil
}

func (s *session) close() {
	s.store.Close()
}

// run opens a session, builds markdown with fn and prints it.
func (u *userFlag) run(ctx context.Context, fn func(*session) (string, error)) subcommands.ExitStatus {
	s, err := u.open(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer s.close()

	md, err := fn(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}

func printMarkdown(md string) {
	if *raw {
		fmt.Print(md)
		return
	}
	out, err := report.Render(md, 80)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
