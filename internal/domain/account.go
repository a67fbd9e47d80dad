package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrAccountNotFound = errors.New("account not found")

const AccountStatusActive = "active"

// Account is the denormalized balance row kept for every account observed
// in the event stream. It is created once by the first AccountCreated event
// and mutated in place by deposit/withdrawal events, never deleted.
type Account struct {
	AccountID   string
	OwnerName   string
	Balance     decimal.Decimal
	Currency    string
	Status      string
	LastUpdated time.Time
}
