package domain

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql operations the repositories need.
// Both *sql.DB and *sql.Tx satisfy it, so the same repository code runs
// inside and outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs a function within a single database transaction. The
// transaction is rolled back if the function returns an error or panics,
// committed otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(q Querier) error) error
}
