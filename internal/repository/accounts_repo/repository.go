package accounts_repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"readmodel/internal/domain"
)

type AccountRepository interface {
	// CreateAccountTx inserts the account row if no row with that identifier
	// exists yet. Returns false when the row was already present.
	CreateAccountTx(ctx context.Context, querier domain.Querier, account *domain.Account) (bool, error)
	// ApplyBalanceDeltaTx adds delta to the account balance and returns the
	// new balance. Returns domain.ErrAccountNotFound if the account row has
	// not been projected yet.
	ApplyBalanceDeltaTx(ctx context.Context, querier domain.Querier, accountID string, delta decimal.Decimal, at time.Time) (decimal.Decimal, error)
	GetAccountTx(ctx context.Context, querier domain.Querier, accountID string) (*domain.Account, error)
}
