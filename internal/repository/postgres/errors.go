package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"blockwriter/internal/domain"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 = unique_violation
		return pgErr.Code == "23505"
	}
	return false
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23503 = foreign_key_violation
		return pgErr.Code == "23503"
	}
	return false
}

// wrapGetError maps pgx.ErrNoRows to domain.ErrNotFound for a single-row lookup
func wrapGetError(err error, resource, id string) error {
	if IsPgNoRowsError(err) {
		return fmt.Errorf("%s %s: %w", resource, id, domain.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", resource, err)
}

// requireAffected reports ErrNotFound when a write touched no rows
func requireAffected(tag pgconn.CommandTag, resource, id string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %s: %w", resource, id, domain.ErrNotFound)
	}
	return nil
}
