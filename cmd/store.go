package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/database"
	"github.com/kozaktomas/face-attendance/internal/database/mariadb"
	"github.com/kozaktomas/face-attendance/internal/database/postgres"
)

// openStore connects to the configured backend and applies pending migrations.
func openStore(ctx context.Context, cfg *config.Config) (database.Store, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}
	logger := slog.Default().With("driver", cfg.Database.Driver)

	switch cfg.Database.Driver {
	case "postgres", "postgresql":
		store, err := postgres.Open(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
		}
		return store, nil
	case "mariadb", "mysql":
		store, err := mariadb.Open(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open MariaDB: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (want postgres or mariadb)", cfg.Database.Driver)
	}
}
