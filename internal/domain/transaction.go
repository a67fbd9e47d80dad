package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrDuplicateTransaction = errors.New("transaction already recorded")

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
)

// TransactionRecord is one immutable ledger row. Its identifier is the id of
// the event that produced it, which is what makes redelivery detectable: a
// second insert with the same id hits the primary key.
type TransactionRecord struct {
	TransactionID string
	AccountID     string
	Type          TransactionType
	Amount        decimal.Decimal
	BalanceAfter  decimal.Decimal
	Description   string
	Timestamp     time.Time
}
