package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one embedded schema step
type Migration struct {
	Version string
	SQL     string
}

// LoadMigrations returns the embedded migrations in version order with the table prefix applied.
func LoadMigrations(prefix string) ([]Migration, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(entries)

	migrations := make([]Migration, 0, len(entries))
	for _, name := range entries {
		data, err := migrationFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		version := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".sql")
		migrations = append(migrations, Migration{
			Version: version,
			SQL:     strings.ReplaceAll(string(data), "{{prefix}}", prefix),
		})
	}

	return migrations, nil
}

// Migrator applies embedded migrations once each, recording them in schema_migrations
type Migrator struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

func NewMigrator(config *RepositoryConfig) *Migrator {
	return &Migrator{pool: config.Pool, tables: config.Tables, logger: config.Logger}
}

// Up applies pending migrations, each in its own transaction. Returns the versions applied.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	createSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, m.tables.Migrations)
	if _, err := m.pool.Exec(ctx, createSQL); err != nil {
		return nil, fmt.Errorf("create migrations table: %w", err)
	}

	migrations, err := LoadMigrations(m.tables.Prefix)
	if err != nil {
		return nil, err
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, mig := range migrations {
		if applied[mig.Version] {
			continue
		}

		tx, err := m.pool.Begin(ctx)
		if err != nil {
			return ran, fmt.Errorf("begin migration %s: %w", mig.Version, err)
		}
		if _, err := tx.Exec(ctx, mig.SQL); err != nil {
			_ = tx.Rollback(ctx)
			return ran, fmt.Errorf("apply migration %s: %w", mig.Version, err)
		}
		insert := fmt.Sprintf(`INSERT INTO %s (version) VALUES ($1)`, m.tables.Migrations)
		if _, err := tx.Exec(ctx, insert, mig.Version); err != nil {
			_ = tx.Rollback(ctx)
			return ran, fmt.Errorf("record migration %s: %w", mig.Version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return ran, fmt.Errorf("commit migration %s: %w", mig.Version, err)
		}

		m.logger.Info("migration applied", "version", mig.Version, "prefix", m.tables.Prefix)
		ran = append(ran, mig.Version)
	}

	return ran, nil
}

// DropAll drops every table with this prefix, including the migrations table.
func (m *Migrator) DropAll(ctx context.Context) error {
	tables := m.tables.All()
	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := m.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, tables[i])); err != nil {
			return fmt.Errorf("drop %s: %w", tables[i], err)
		}
	}
	if _, err := m.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, m.tables.Migrations)); err != nil {
		return fmt.Errorf("drop %s: %w", m.tables.Migrations, err)
	}

	m.logger.Info("tables dropped", "prefix", m.tables.Prefix)
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := m.pool.Query(ctx, fmt.Sprintf(`SELECT version FROM %s`, m.tables.Migrations))
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration: %w", err)
		}
		applied[v] = true
	}

	return applied, rows.Err()
}
