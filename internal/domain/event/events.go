package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Event types emitted by the write-side ledger.
const (
	TypeAccountCreated = "AccountCreated"
	TypeMoneyDeposited = "MoneyDeposited"
	TypeMoneyWithdrawn = "MoneyWithdrawn"
)

// ErrInvalidEvent marks payloads that cannot be decoded into a known event.
// Events failing with it are logged and dropped, never retried.
var ErrInvalidEvent = errors.New("invalid event")

// Envelope is the wire shape shared by every event on the account topics.
// EventData stays raw until the topic-specific decoder picks it apart.
type Envelope struct {
	EventID     string          `json:"event_id"`
	AggregateID string          `json:"aggregate_id"`
	EventType   string          `json:"event_type"`
	CreatedAt   time.Time       `json:"created_at"`
	EventData   json.RawMessage `json:"event_data"`
}

// DecodeEnvelope parses and validates the common envelope fields. The
// payload is untrusted input: any missing identity field is a decode
// failure, not a panic.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	switch {
	case env.EventID == "":
		return Envelope{}, fmt.Errorf("%w: missing event_id", ErrInvalidEvent)
	case env.AggregateID == "":
		return Envelope{}, fmt.Errorf("%w: missing aggregate_id", ErrInvalidEvent)
	case env.EventType == "":
		return Envelope{}, fmt.Errorf("%w: missing event_type", ErrInvalidEvent)
	}
	return env, nil
}

// NewEnvelope builds an envelope around a marshalled payload. Used by event
// producers such as cmd/eventgen; the projection only decodes.
func NewEnvelope(eventID, aggregateID, eventType string, createdAt time.Time, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return Envelope{
		EventID:     eventID,
		AggregateID: aggregateID,
		EventType:   eventType,
		CreatedAt:   createdAt,
		EventData:   raw,
	}, nil
}

// AccountCreatedData is the event_data payload of an AccountCreated event.
// InitialBalance is a pointer so an absent field (invalid) can be told apart
// from a legitimate zero opening balance.
type AccountCreatedData struct {
	AccountID      string           `json:"account_id"`
	OwnerName      string           `json:"owner_name"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
	Currency       string           `json:"currency"`
}

// MoneyMovedData is the event_data payload shared by MoneyDeposited and
// MoneyWithdrawn events. TransferID plus the counterpart account (Sender for
// deposits, Recipient for withdrawals) are only present when the event is
// one side of a transfer.
type MoneyMovedData struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description string           `json:"description,omitempty"`
	TransferID  string           `json:"transfer_id,omitempty"`
	Sender      string           `json:"sender,omitempty"`
	Recipient   string           `json:"recipient,omitempty"`
}

// AccountCreated is the fully decoded and validated creation event.
type AccountCreated struct {
	EventID        string
	AccountID      string
	OwnerName      string
	InitialBalance decimal.Decimal
	Currency       string
	CreatedAt      time.Time
}

// MoneyDeposited is the fully decoded and validated deposit event. Sender is
// the source account when the deposit is the receiving side of a transfer.
type MoneyDeposited struct {
	EventID     string
	AccountID   string
	Amount      decimal.Decimal
	Description string
	TransferID  string
	Sender      string
	CreatedAt   time.Time
}

// MoneyWithdrawn is the fully decoded and validated withdrawal event.
// Recipient is the destination account when the withdrawal is the sending
// side of a transfer.
type MoneyWithdrawn struct {
	EventID     string
	AccountID   string
	Amount      decimal.Decimal
	Description string
	TransferID  string
	Recipient   string
	CreatedAt   time.Time
}

// AccountCreated decodes the envelope payload as an AccountCreated event.
func (e Envelope) AccountCreated() (AccountCreated, error) {
	if e.EventType != TypeAccountCreated {
		return AccountCreated{}, fmt.Errorf("%w: unexpected event_type %q", ErrInvalidEvent, e.EventType)
	}
	var data AccountCreatedData
	if err := json.Unmarshal(e.EventData, &data); err != nil {
		return AccountCreated{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	switch {
	case data.AccountID == "":
		return AccountCreated{}, fmt.Errorf("%w: missing account_id", ErrInvalidEvent)
	case data.OwnerName == "":
		return AccountCreated{}, fmt.Errorf("%w: missing owner_name", ErrInvalidEvent)
	case data.InitialBalance == nil:
		return AccountCreated{}, fmt.Errorf("%w: missing initial_balance", ErrInvalidEvent)
	case data.Currency == "":
		return AccountCreated{}, fmt.Errorf("%w: missing currency", ErrInvalidEvent)
	}
	return AccountCreated{
		EventID:        e.EventID,
		AccountID:      data.AccountID,
		OwnerName:      data.OwnerName,
		InitialBalance: *data.InitialBalance,
		Currency:       data.Currency,
		CreatedAt:      e.CreatedAt,
	}, nil
}

// MoneyDeposited decodes the envelope payload as a MoneyDeposited event.
func (e Envelope) MoneyDeposited() (MoneyDeposited, error) {
	if e.EventType != TypeMoneyDeposited {
		return MoneyDeposited{}, fmt.Errorf("%w: unexpected event_type %q", ErrInvalidEvent, e.EventType)
	}
	data, err := e.moneyMoved()
	if err != nil {
		return MoneyDeposited{}, err
	}
	return MoneyDeposited{
		EventID:     e.EventID,
		AccountID:   e.AggregateID,
		Amount:      *data.Amount,
		Description: data.Description,
		TransferID:  data.TransferID,
		Sender:      data.Sender,
		CreatedAt:   e.CreatedAt,
	}, nil
}

// MoneyWithdrawn decodes the envelope payload as a MoneyWithdrawn event.
func (e Envelope) MoneyWithdrawn() (MoneyWithdrawn, error) {
	if e.EventType != TypeMoneyWithdrawn {
		return MoneyWithdrawn{}, fmt.Errorf("%w: unexpected event_type %q", ErrInvalidEvent, e.EventType)
	}
	data, err := e.moneyMoved()
	if err != nil {
		return MoneyWithdrawn{}, err
	}
	return MoneyWithdrawn{
		EventID:     e.EventID,
		AccountID:   e.AggregateID,
		Amount:      *data.Amount,
		Description: data.Description,
		TransferID:  data.TransferID,
		Recipient:   data.Recipient,
		CreatedAt:   e.CreatedAt,
	}, nil
}

func (e Envelope) moneyMoved() (MoneyMovedData, error) {
	var data MoneyMovedData
	if err := json.Unmarshal(e.EventData, &data); err != nil {
		return MoneyMovedData{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if data.Amount == nil {
		return MoneyMovedData{}, fmt.Errorf("%w: missing amount", ErrInvalidEvent)
	}
	if !data.Amount.IsPositive() {
		return MoneyMovedData{}, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidEvent, data.Amount)
	}
	return data, nil
}
