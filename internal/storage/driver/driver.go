// Package driver opens the storage backend named in the configuration.
package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/postgres"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// Open returns a migrated store for cfg.DBDriver.
func Open(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver, "database", cfg.DBPath)
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver)
		return store, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
}
