package readmodel_http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"readmodel/internal/domain"
	"readmodel/internal/domain/event"
)

type stubProjectionService struct {
	account      *domain.Account
	transactions []domain.TransactionRecord
	transfer     *domain.TransferRecord
	lastLimit    int
}

func (s *stubProjectionService) ApplyAccountCreated(ctx context.Context, evt event.AccountCreated) error {
	return nil
}

func (s *stubProjectionService) ApplyMoneyDeposited(ctx context.Context, evt event.MoneyDeposited) error {
	return nil
}

func (s *stubProjectionService) ApplyMoneyWithdrawn(ctx context.Context, evt event.MoneyWithdrawn) error {
	return nil
}

func (s *stubProjectionService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	if s.account == nil || s.account.AccountID != accountID {
		return nil, domain.ErrAccountNotFound
	}
	return s.account, nil
}

func (s *stubProjectionService) ListTransactions(ctx context.Context, accountID string, limit int) ([]domain.TransactionRecord, error) {
	s.lastLimit = limit
	return s.transactions, nil
}

func (s *stubProjectionService) GetTransfer(ctx context.Context, transferID string) (*domain.TransferRecord, error) {
	if s.transfer == nil || s.transfer.TransferID != transferID {
		return nil, domain.ErrTransferNotFound
	}
	return s.transfer, nil
}

func newTestRouter(s *stubProjectionService) chi.Router {
	r := chi.NewRouter()
	RegisterRoutes(r, s, zap.NewNop())
	return r
}

func TestGetAccountHandler(t *testing.T) {
	t.Parallel()

	svc := &stubProjectionService{
		account: &domain.Account{
			AccountID:   "acc-1",
			OwnerName:   "Alice",
			Balance:     decimal.NewFromInt(150),
			Currency:    "USD",
			Status:      domain.AccountStatusActive,
			LastUpdated: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "acc-1", resp.AccountID)
	assert.Equal(t, "Alice", resp.OwnerName)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, domain.AccountStatusActive, resp.Status)
}

func TestGetAccountHandlerNotFound(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubProjectionService{})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTransactionsHandler(t *testing.T) {
	t.Parallel()

	svc := &stubProjectionService{
		transactions: []domain.TransactionRecord{
			{
				TransactionID: "E2",
				AccountID:     "acc-1",
				Type:          domain.TransactionTypeDeposit,
				Amount:        decimal.NewFromInt(50),
				BalanceAfter:  decimal.NewFromInt(150),
				Description:   "Deposit",
				Timestamp:     time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC),
			},
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/transactions?limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, svc.lastLimit)

	var resp []TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "E2", resp[0].TransactionID)
	assert.Equal(t, "deposit", resp[0].Type)
}

func TestListTransactionsHandlerRejectsBadLimit(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubProjectionService{})

	for _, limit := range []string{"abc", "0", "-5", "100000"} {
		req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/transactions?limit="+limit, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit=%s", limit)
	}
}

func TestGetTransferHandler(t *testing.T) {
	t.Parallel()

	svc := &stubProjectionService{
		transfer: &domain.TransferRecord{
			TransferID:  "T1",
			FromAccount: "A",
			ToAccount:   "B",
			Amount:      decimal.NewFromInt(30),
			Status:      domain.TransferStatusCompleted,
			Timestamp:   time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC),
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/transfers/T1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TransferResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "A", resp.FromAccount)
	assert.Equal(t, "B", resp.ToAccount)
	assert.Equal(t, domain.TransferStatusCompleted, resp.Status)

	req = httptest.NewRequest(http.MethodGet, "/transfers/T-unknown", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
