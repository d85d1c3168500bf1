package migrations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/yigit/placementhub/internal/pkg/logger"
)

// advisoryLockID serialises migrations across API replicas starting together.
const advisoryLockID int64 = 0x706c6163656d6e74

const createVersionsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    VARCHAR(255) PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migrator applies numbered SQL files, each exactly once, recording the
// version prefix in schema_migrations.
type Migrator struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

func NewMigrator(db *pgxpool.Pool) *Migrator {
	return &Migrator{db: db, log: logger.Component("migrator")}
}

// Version is the numeric prefix of a migration file ("001_init.sql" => "001").
func Version(filename string) string {
	v, _, _ := strings.Cut(filepath.Base(filename), "_")
	return v
}

// SQLFiles lists the *.sql files directly inside dir, sorted by name.
func SQLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// pending filters out files whose version is already applied.
func pending(files []string, applied map[string]bool) []string {
	var out []string
	for _, f := range files {
		if !applied[Version(f)] {
			out = append(out, f)
		}
	}
	return out
}

// MigrateDir applies the pending files in dir in order while holding a
// session advisory lock.
func (m *Migrator) MigrateDir(ctx context.Context, dir string) error {
	files, err := SQLFiles(dir)
	if err != nil {
		return err
	}

	conn, err := m.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		return fmt.Errorf("take migration lock: %w", err)
	}
	defer func() {
		if _, err := conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			m.log.Warn().Err(err).Msg("Failed to release migration lock")
		}
	}()

	if _, err := conn.Exec(ctx, createVersionsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	applied, err := appliedVersions(ctx, conn.Conn())
	if err != nil {
		return err
	}

	todo := pending(files, applied)
	m.log.Info().Int("applied", len(applied)).Int("pending", len(todo)).Msg("Checked migrations")
	for _, f := range todo {
		if err := m.apply(ctx, conn.Conn(), f); err != nil {
			return err
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, conn *pgx.Conn) (map[string]bool, error) {
	rows, err := conn.Query(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan applied migrations: %w", err)
	}

	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// apply runs one file and records its version in the same transaction.
func (m *Migrator) apply(ctx context.Context, conn *pgx.Conn, path string) error {
	name := filepath.Base(path)
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}

	err = pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(body)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", Version(name))
		return err
	})
	if err != nil {
		return fmt.Errorf("migration %s: %w", name, err)
	}

	m.log.Info().Str("file", name).Msg("Migration applied")
	return nil
}
