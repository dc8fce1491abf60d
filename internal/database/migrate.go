package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
)

// Dialect captures the SQL differences between backends that matter to migrations.
type Dialect struct {
	// CreateTable creates schema_migrations if it does not exist.
	CreateTable string
	// Insert records one applied version; it takes a single placeholder.
	Insert string
	// Transactional runs each file inside one transaction.
	// MariaDB commits DDL implicitly, so it runs statements one at a time instead.
	Transactional bool
}

// MigrationStatus lists schema versions by file name.
type MigrationStatus struct {
	Applied []string `json:"applied"`
	Pending []string `json:"pending"`
}

// Migrations applies the *.sql files of Dir in FS in name order.
type Migrations struct {
	FS      fs.FS
	Dir     string
	Dialect Dialect
	Logger  *slog.Logger
}

// Status reports which files have been applied to db and which are pending.
func (m *Migrations) Status(ctx context.Context, db *sql.DB) (MigrationStatus, error) {
	if _, err := db.ExecContext(ctx, m.Dialect.CreateTable); err != nil {
		return MigrationStatus{}, fmt.Errorf("create migrations table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	var applied []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return MigrationStatus{}, fmt.Errorf("scan migration version: %w", err)
		}
		applied = append(applied, v)
	}
	if err := rows.Err(); err != nil {
		return MigrationStatus{}, fmt.Errorf("iterate applied migrations: %w", err)
	}

	files, err := m.files()
	if err != nil {
		return MigrationStatus{}, err
	}
	return MigrationStatus{Applied: applied, Pending: pending(files, applied)}, nil
}

// Up applies every pending file and returns the versions it applied.
func (m *Migrations) Up(ctx context.Context, db *sql.DB) ([]string, error) {
	status, err := m.Status(ctx, db)
	if err != nil {
		return nil, err
	}

	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var done []string
	for _, file := range status.Pending {
		content, err := fs.ReadFile(m.FS, path.Join(m.Dir, file))
		if err != nil {
			return done, fmt.Errorf("read migration %s: %w", file, err)
		}
		if m.Dialect.Transactional {
			err = m.applyTx(ctx, db, file, string(content))
		} else {
			err = m.applyEach(ctx, db, file, string(content))
		}
		if err != nil {
			return done, err
		}
		logger.Info("applied migration", "version", file)
		done = append(done, file)
	}
	return done, nil
}

func (m *Migrations) applyTx(ctx context.Context, db *sql.DB, file, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction for %s: %w", file, err)
	}
	if _, err := tx.ExecContext(ctx, content); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("execute migration %s: %w", file, err)
	}
	if _, err := tx.ExecContext(ctx, m.Dialect.Insert, file); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %s: %w", file, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", file, err)
	}
	return nil
}

// applyEach can leave earlier statements of a failing file applied, so every
// statement in a non-transactional migration must be idempotent.
func (m *Migrations) applyEach(ctx context.Context, db *sql.DB, file, content string) error {
	for _, stmt := range SplitStatements(content) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute migration %s: %w", file, err)
		}
	}
	if _, err := db.ExecContext(ctx, m.Dialect.Insert, file); err != nil {
		return fmt.Errorf("record migration %s: %w", file, err)
	}
	return nil
}

func (m *Migrations) files() ([]string, error) {
	entries, err := fs.ReadDir(m.FS, m.Dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	slices.Sort(files)
	return files, nil
}

func pending(files, applied []string) []string {
	var out []string
	for _, f := range files {
		if !slices.Contains(applied, f) {
			out = append(out, f)
		}
	}
	return out
}

// SplitStatements breaks a migration file into single statements on ';'.
// Migration files must not contain semicolons inside literals.
func SplitStatements(content string) []string {
	var stmts []string
	for part := range strings.SplitSeq(content, ";") {
		if s := strings.TrimSpace(part); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
