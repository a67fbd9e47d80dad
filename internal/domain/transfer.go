package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrTransferNotFound = errors.New("transfer not found")

const TransferStatusCompleted = "completed"

// TransferRecord correlates the two sides of a transfer (a withdrawal on the
// source account and a deposit on the destination account) into one row.
// Whichever side is processed first fixes the row's content; the other side
// is a no-op. Both sides carry identical transfer-level fields by
// construction on the write side, so no reconciliation is needed.
type TransferRecord struct {
	TransferID  string
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
	Description string
	Status      string
	Timestamp   time.Time
}
