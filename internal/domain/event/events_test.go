package event

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "valid envelope",
			raw:  `{"event_id":"evt-1","aggregate_id":"acc-1","event_type":"AccountCreated","created_at":"2026-08-01T10:00:00Z","event_data":{}}`,
		},
		{
			name:    "malformed json",
			raw:     `{"event_id":`,
			wantErr: true,
		},
		{
			name:    "missing event_id",
			raw:     `{"aggregate_id":"acc-1","event_type":"AccountCreated","event_data":{}}`,
			wantErr: true,
		},
		{
			name:    "missing aggregate_id",
			raw:     `{"event_id":"evt-1","event_type":"AccountCreated","event_data":{}}`,
			wantErr: true,
		},
		{
			name:    "missing event_type",
			raw:     `{"event_id":"evt-1","aggregate_id":"acc-1","event_data":{}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, err := DecodeEnvelope([]byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "evt-1", env.EventID)
			assert.Equal(t, "acc-1", env.AggregateID)
		})
	}
}

func TestAccountCreatedDecode(t *testing.T) {
	t.Parallel()

	valid := `{"account_id":"acc-1","owner_name":"Alice","initial_balance":100,"currency":"USD"}`

	tests := []struct {
		name      string
		eventType string
		data      string
		wantErr   bool
	}{
		{name: "valid", eventType: TypeAccountCreated, data: valid},
		{name: "zero initial balance is valid", eventType: TypeAccountCreated, data: `{"account_id":"acc-1","owner_name":"Alice","initial_balance":0,"currency":"USD"}`},
		{name: "wrong event_type", eventType: TypeMoneyDeposited, data: valid, wantErr: true},
		{name: "missing account_id", eventType: TypeAccountCreated, data: `{"owner_name":"Alice","initial_balance":100,"currency":"USD"}`, wantErr: true},
		{name: "missing owner_name", eventType: TypeAccountCreated, data: `{"account_id":"acc-1","initial_balance":100,"currency":"USD"}`, wantErr: true},
		{name: "missing initial_balance", eventType: TypeAccountCreated, data: `{"account_id":"acc-1","owner_name":"Alice","currency":"USD"}`, wantErr: true},
		{name: "missing currency", eventType: TypeAccountCreated, data: `{"account_id":"acc-1","owner_name":"Alice","initial_balance":100}`, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := Envelope{
				EventID:     "evt-1",
				AggregateID: "acc-1",
				EventType:   tt.eventType,
				CreatedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
				EventData:   []byte(tt.data),
			}
			evt, err := env.AccountCreated()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "evt-1", evt.EventID)
			assert.Equal(t, "acc-1", evt.AccountID)
			assert.Equal(t, "Alice", evt.OwnerName)
			assert.Equal(t, "USD", evt.Currency)
		})
	}
}

func TestMoneyDepositedDecode(t *testing.T) {
	t.Parallel()

	env := Envelope{
		EventID:     "evt-2",
		AggregateID: "acc-2",
		EventType:   TypeMoneyDeposited,
		CreatedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		EventData:   []byte(`{"amount":50,"description":"Salary","transfer_id":"tr-1","sender":"acc-1"}`),
	}

	evt, err := env.MoneyDeposited()
	require.NoError(t, err)
	assert.Equal(t, "evt-2", evt.EventID)
	assert.Equal(t, "acc-2", evt.AccountID)
	assert.True(t, evt.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "Salary", evt.Description)
	assert.Equal(t, "tr-1", evt.TransferID)
	assert.Equal(t, "acc-1", evt.Sender)
}

func TestMoneyMovedDecodeRejectsBadAmounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "missing amount", data: `{"description":"no amount"}`},
		{name: "zero amount", data: `{"amount":0}`},
		{name: "negative amount", data: `{"amount":-10}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := Envelope{
				EventID:     "evt-3",
				AggregateID: "acc-3",
				EventType:   TypeMoneyWithdrawn,
				EventData:   []byte(tt.data),
			}
			_, err := env.MoneyWithdrawn()
			assert.ErrorIs(t, err, ErrInvalidEvent)
		})
	}
}

func TestNewEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	amount := decimal.NewFromInt(30)
	data := MoneyMovedData{
		Amount:     &amount,
		TransferID: "tr-9",
		Recipient:  "acc-2",
	}
	createdAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	env, err := NewEnvelope("evt-9", "acc-1", TypeMoneyWithdrawn, createdAt, data)
	require.NoError(t, err)

	evt, err := env.MoneyWithdrawn()
	require.NoError(t, err)
	assert.Equal(t, "acc-1", evt.AccountID)
	assert.True(t, evt.Amount.Equal(amount))
	assert.Equal(t, "tr-9", evt.TransferID)
	assert.Equal(t, "acc-2", evt.Recipient)
	assert.Equal(t, createdAt, evt.CreatedAt)
}
