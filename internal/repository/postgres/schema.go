package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// SchemaSQL renders the embedded schema for the given table prefix
func SchemaSQL(tables *TableNames) string {
	return strings.ReplaceAll(schemaSQL, "{{p}}", tables.Prefix)
}

// EnsureSchema creates any missing tables and indexes. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	if _, err := pool.Exec(ctx, SchemaSQL(tables)); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// DropSchema drops every prefixed table. Intended for dev resets only.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, table := range tables.All() {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

// ClearUserData deletes everything owned by userID, children first. Blocks cascade with documents.
func ClearUserData(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, userID string) error {
	statements := []struct {
		table  string
		column string
	}{
		{tables.Experiences, "user_id"},
		{tables.Documents, "user_id"},
		{tables.Folders, "user_id"},
		{tables.Templates, "user_id"},
		{tables.UserProfiles, "user_id"},
	}
	for _, s := range statements {
		query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", s.table, s.column)
		if _, err := pool.Exec(ctx, query, userID); err != nil {
			return fmt.Errorf("clear %s: %w", s.table, err)
		}
	}
	return nil
}
