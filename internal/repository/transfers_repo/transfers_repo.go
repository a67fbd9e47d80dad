package transfers_repo

import (
	"context"
	"database/sql"
	"fmt"

	"readmodel/internal/domain"
)

type transferRepository struct{}

func NewTransferRepository() *transferRepository {
	return &transferRepository{}
}

func (r *transferRepository) UpsertTransferTx(ctx context.Context, querier domain.Querier, record *domain.TransferRecord) (bool, error) {
	query := `
		INSERT INTO transfers (transfer_id, from_account, to_account, amount, description, status, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (transfer_id) DO NOTHING
	`
	res, err := querier.ExecContext(ctx, query,
		record.TransferID,
		record.FromAccount,
		record.ToAccount,
		record.Amount,
		record.Description,
		record.Status,
		record.Timestamp,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert transfer %s: %w", record.TransferID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *transferRepository) GetTransferTx(ctx context.Context, querier domain.Querier, transferID string) (*domain.TransferRecord, error) {
	query := `
		SELECT transfer_id, from_account, to_account, amount, description, status, timestamp
		FROM transfers
		WHERE transfer_id = $1
	`
	record := &domain.TransferRecord{}
	err := querier.QueryRowContext(ctx, query, transferID).Scan(
		&record.TransferID,
		&record.FromAccount,
		&record.ToAccount,
		&record.Amount,
		&record.Description,
		&record.Status,
		&record.Timestamp,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer %s: %w", transferID, err)
	}
	return record, nil
}
