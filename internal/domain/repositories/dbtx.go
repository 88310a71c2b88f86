package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so a repository
// method runs unchanged inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// TxFn is a unit of work. Repositories called with ctx join the transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs multi-repository writes atomically, e.g. document
// creation with its blocks or folder deletion with document detachment.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

type txKey struct{}

// SetTx returns a context carrying tx
func SetTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// GetTx returns the context transaction, or nil
func GetTx(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}
