package transactions_repo

import (
	"context"

	"readmodel/internal/domain"
)

type TransactionRepository interface {
	// InsertTransactionTx appends one immutable ledger row. Returns
	// domain.ErrDuplicateTransaction when a row with the same transaction
	// identifier already exists; the ledger is never updated in place.
	InsertTransactionTx(ctx context.Context, querier domain.Querier, record *domain.TransactionRecord) error
	ListByAccountTx(ctx context.Context, querier domain.Querier, accountID string, limit int) ([]domain.TransactionRecord, error)
}
