package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"thecrew/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Prefix         string
	Users          string
	Workspaces     string
	Members        string
	Folders        string
	Files          string
	Tasks          string
	TaskComments   string
	Interrogations string
	Migrations     string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Prefix:         prefix,
		Users:          fmt.Sprintf("%susers", prefix),
		Workspaces:     fmt.Sprintf("%sworkspaces", prefix),
		Members:        fmt.Sprintf("%sworkspace_members", prefix),
		Folders:        fmt.Sprintf("%sfolders", prefix),
		Files:          fmt.Sprintf("%sfiles", prefix),
		Tasks:          fmt.Sprintf("%stasks", prefix),
		TaskComments:   fmt.Sprintf("%stask_comments", prefix),
		Interrogations: fmt.Sprintf("%sinterrogations", prefix),
		Migrations:     fmt.Sprintf("%sschema_migrations", prefix),
	}
}

// All returns every table in dependency order (parents first).
func (t *TableNames) All() []string {
	return []string{
		t.Users,
		t.Workspaces,
		t.Members,
		t.Folders,
		t.Files,
		t.Interrogations,
		t.Tasks,
		t.TaskComments,
	}
}

// CreateConnectionPool creates a new pgx connection pool with automatic PgBouncer compatibility.
//
// PgBouncer in transaction pooling mode (port 6543 on managed Postgres poolers) does not
// support prepared statements. On that port the pool switches to QueryExecModeCacheDescribe,
// which keeps the extended protocol (needed for JSONB encoding of maps and slices) while
// caching only statement descriptions. A default_query_exec_mode in the connection string
// takes precedence.
//
// Table prefixes are interpolated with fmt.Sprintf before statements reach the server, so
// each environment gets its own cached statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
