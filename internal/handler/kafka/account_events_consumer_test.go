package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"readmodel/internal/domain"
	"readmodel/internal/domain/event"
	"readmodel/internal/metrics"
)

type fakeProjectionService struct {
	created   []event.AccountCreated
	deposited []event.MoneyDeposited
	withdrawn []event.MoneyWithdrawn
	applyErr  error
}

func (s *fakeProjectionService) ApplyAccountCreated(ctx context.Context, evt event.AccountCreated) error {
	s.created = append(s.created, evt)
	return s.applyErr
}

func (s *fakeProjectionService) ApplyMoneyDeposited(ctx context.Context, evt event.MoneyDeposited) error {
	s.deposited = append(s.deposited, evt)
	return s.applyErr
}

func (s *fakeProjectionService) ApplyMoneyWithdrawn(ctx context.Context, evt event.MoneyWithdrawn) error {
	s.withdrawn = append(s.withdrawn, evt)
	return s.applyErr
}

func (s *fakeProjectionService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (s *fakeProjectionService) ListTransactions(ctx context.Context, accountID string, limit int) ([]domain.TransactionRecord, error) {
	return nil, nil
}

func (s *fakeProjectionService) GetTransfer(ctx context.Context, transferID string) (*domain.TransferRecord, error) {
	return nil, domain.ErrTransferNotFound
}

func testMetrics() *metrics.ProjectionMetrics {
	return metrics.NewProjectionMetrics(prometheus.NewRegistry())
}

func envelopeJSON(t *testing.T, eventType, aggregateID string, data any) []byte {
	t.Helper()
	env, err := event.NewEnvelope("evt-1", aggregateID, eventType, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), data)
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return raw
}

func TestAccountCreatedMessageHandler(t *testing.T) {
	t.Parallel()

	svc := &fakeProjectionService{}
	handler := AccountCreatedMessageHandler(svc, testMetrics(), zap.NewNop())

	balance := decimal.NewFromInt(100)
	raw := envelopeJSON(t, event.TypeAccountCreated, "acc-1", event.AccountCreatedData{
		AccountID:      "acc-1",
		OwnerName:      "Alice",
		InitialBalance: &balance,
		Currency:       "USD",
	})

	err := handler(context.Background(), kafka.Message{Topic: "events.account.created", Value: raw})
	require.NoError(t, err)

	require.Len(t, svc.created, 1)
	assert.Equal(t, "acc-1", svc.created[0].AccountID)
	assert.True(t, svc.created[0].InitialBalance.Equal(balance))
}

func TestMoneyWithdrawnMessageHandler(t *testing.T) {
	t.Parallel()

	svc := &fakeProjectionService{}
	handler := MoneyWithdrawnMessageHandler(svc, testMetrics(), zap.NewNop())

	amount := decimal.NewFromInt(30)
	raw := envelopeJSON(t, event.TypeMoneyWithdrawn, "A", event.MoneyMovedData{
		Amount:     &amount,
		TransferID: "T1",
		Recipient:  "B",
	})

	err := handler(context.Background(), kafka.Message{Topic: "events.account.withdrawn", Value: raw})
	require.NoError(t, err)

	require.Len(t, svc.withdrawn, 1)
	assert.Equal(t, "A", svc.withdrawn[0].AccountID)
	assert.Equal(t, "T1", svc.withdrawn[0].TransferID)
	assert.Equal(t, "B", svc.withdrawn[0].Recipient)
}

func TestHandlerDropsMalformedPayload(t *testing.T) {
	t.Parallel()

	svc := &fakeProjectionService{}
	handler := MoneyDepositedMessageHandler(svc, testMetrics(), zap.NewNop())

	err := handler(context.Background(), kafka.Message{Value: []byte("not json")})
	require.NoError(t, err)
	assert.Empty(t, svc.deposited)
}

func TestHandlerDropsMismatchedEventType(t *testing.T) {
	t.Parallel()

	svc := &fakeProjectionService{}
	handler := AccountCreatedMessageHandler(svc, testMetrics(), zap.NewNop())

	amount := decimal.NewFromInt(10)
	raw := envelopeJSON(t, event.TypeMoneyDeposited, "acc-1", event.MoneyMovedData{Amount: &amount})

	err := handler(context.Background(), kafka.Message{Value: raw})
	require.NoError(t, err)
	assert.Empty(t, svc.created)
}

func TestHandlerIsTerminalOnProjectionError(t *testing.T) {
	t.Parallel()

	// A projection failure is logged and the offset still commits; the
	// event stream is the source of truth and correction happens by replay.
	svc := &fakeProjectionService{applyErr: errors.New("store unavailable")}
	handler := MoneyDepositedMessageHandler(svc, testMetrics(), zap.NewNop())

	amount := decimal.NewFromInt(10)
	raw := envelopeJSON(t, event.TypeMoneyDeposited, "acc-1", event.MoneyMovedData{Amount: &amount})

	err := handler(context.Background(), kafka.Message{Value: raw})
	assert.NoError(t, err)
	assert.Len(t, svc.deposited, 1)
}
