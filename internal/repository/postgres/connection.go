package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blockwriter/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Prefix       string
	Folders      string
	Documents    string
	Blocks       string
	Templates    string
	Experiences  string
	UserProfiles string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Prefix:       prefix,
		Folders:      fmt.Sprintf("%sfolders", prefix),
		Documents:    fmt.Sprintf("%sdocuments", prefix),
		Blocks:       fmt.Sprintf("%sblocks", prefix),
		Templates:    fmt.Sprintf("%stemplates", prefix),
		Experiences:  fmt.Sprintf("%sexperiences", prefix),
		UserProfiles: fmt.Sprintf("%suser_profiles", prefix),
	}
}

// All lists every table in dependency order (children first)
func (t *TableNames) All() []string {
	return []string{t.Blocks, t.Experiences, t.Documents, t.Folders, t.Templates, t.UserProfiles}
}

// CreateConnectionPool creates a new pgx connection pool with automatic PgBouncer compatibility.
//
// pgx uses prepared statements by default (QueryExecModeCacheStatement). PgBouncer in
// transaction pooling mode (port 6543 on Supabase) does not support them, so that port
// switches to QueryExecModeCacheDescribe, which keeps the extended protocol needed for
// JSONB encoding. An explicit ?default_query_exec_mode=... in the URL takes precedence.
//
// Dynamic table prefixes are interpolated with fmt.Sprintf before the SQL reaches the
// database, so each environment gets its own statements.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2

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

// GetExecutor returns the transaction stored in ctx, or the pool when there is none.
// This lets repositories join a transaction started by TransactionManager.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
