package accounts_repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"readmodel/internal/domain"
)

type accountRepository struct{}

func NewAccountRepository() *accountRepository {
	return &accountRepository{}
}

func (r *accountRepository) CreateAccountTx(ctx context.Context, querier domain.Querier, account *domain.Account) (bool, error) {
	query := `
		INSERT INTO account_balance (account_id, owner_name, balance, currency, status, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (account_id) DO NOTHING
	`
	res, err := querier.ExecContext(ctx, query,
		account.AccountID, account.OwnerName, account.Balance, account.Currency, account.Status, account.LastUpdated)
	if err != nil {
		return false, fmt.Errorf("failed to create account %s: %w", account.AccountID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *accountRepository) ApplyBalanceDeltaTx(ctx context.Context, querier domain.Querier, accountID string, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	query := `
		UPDATE account_balance
		SET balance = balance + $1, last_updated = $2
		WHERE account_id = $3
		RETURNING balance
	`
	var balance decimal.Decimal
	err := querier.QueryRowContext(ctx, query, delta, at, accountID).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Decimal{}, domain.ErrAccountNotFound
		}
		return decimal.Decimal{}, fmt.Errorf("failed to update balance for account %s: %w", accountID, err)
	}
	return balance, nil
}

func (r *accountRepository) GetAccountTx(ctx context.Context, querier domain.Querier, accountID string) (*domain.Account, error) {
	query := `
		SELECT account_id, owner_name, balance, currency, status, last_updated
		FROM account_balance
		WHERE account_id = $1
	`
	account := &domain.Account{}
	err := querier.QueryRowContext(ctx, query, accountID).Scan(
		&account.AccountID,
		&account.OwnerName,
		&account.Balance,
		&account.Currency,
		&account.Status,
		&account.LastUpdated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	return account, nil
}
