package transactions_repo

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"readmodel/internal/domain"
)

const uniqueViolation = "23505"

type transactionRepository struct{}

func NewTransactionRepository() *transactionRepository {
	return &transactionRepository{}
}

func (r *transactionRepository) InsertTransactionTx(ctx context.Context, querier domain.Querier, record *domain.TransactionRecord) error {
	query := `
		INSERT INTO transactions (transaction_id, account_id, type, amount, balance_after, description, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := querier.ExecContext(ctx, query,
		record.TransactionID,
		record.AccountID,
		string(record.Type),
		record.Amount,
		record.BalanceAfter,
		record.Description,
		record.Timestamp,
	)
	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to insert transaction %s: %w", record.TransactionID, err)
	}
	return nil
}

func (r *transactionRepository) ListByAccountTx(ctx context.Context, querier domain.Querier, accountID string, limit int) ([]domain.TransactionRecord, error) {
	query := `
		SELECT transaction_id, account_id, type, amount, balance_after, description, timestamp
		FROM transactions
		WHERE account_id = $1
		ORDER BY timestamp DESC, transaction_id
		LIMIT $2
	`
	rows, err := querier.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	var records []domain.TransactionRecord
	for rows.Next() {
		var rec domain.TransactionRecord
		if err := rows.Scan(
			&rec.TransactionID,
			&rec.AccountID,
			&rec.Type,
			&rec.Amount,
			&rec.BalanceAfter,
			&rec.Description,
			&rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction rows: %w", err)
	}
	return records, nil
}
