package mariadb

import (
	"context"
	"embed"

	"github.com/kozaktomas/face-attendance/internal/database"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// The driver runs without multiStatements, and DDL commits implicitly anyway.
var dialect = database.Dialect{
	CreateTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) NOT NULL PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	Insert: "INSERT INTO schema_migrations (version) VALUES (?)",
}

func (p *Pool) migrations() *database.Migrations {
	return &database.Migrations{FS: migrationsFS, Dir: "migrations", Dialect: dialect, Logger: p.logger}
}

// Migrate applies all pending migrations statement by statement.
func (p *Pool) Migrate(ctx context.Context) error {
	_, err := p.migrations().Up(ctx, p.db)
	return err
}

// Migrations reports applied and pending schema versions.
func (s *Store) Migrations(ctx context.Context) (database.MigrationStatus, error) {
	return s.pool.migrations().Status(ctx, s.pool.db)
}
