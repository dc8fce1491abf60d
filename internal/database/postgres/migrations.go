package postgres

import (
	"context"
	"embed"

	"github.com/kozaktomas/face-attendance/internal/database"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var dialect = database.Dialect{
	CreateTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)`,
	Insert:        "INSERT INTO schema_migrations (version) VALUES ($1)",
	Transactional: true,
}

func (p *Pool) migrations() *database.Migrations {
	return &database.Migrations{FS: migrationsFS, Dir: "migrations", Dialect: dialect, Logger: p.logger}
}

// Migrate applies all pending migrations, each in its own transaction.
func (p *Pool) Migrate(ctx context.Context) error {
	_, err := p.migrations().Up(ctx, p.db)
	return err
}

// Migrations reports applied and pending schema versions.
func (s *Store) Migrations(ctx context.Context) (database.MigrationStatus, error) {
	return s.pool.migrations().Status(ctx, s.pool.db)
}
