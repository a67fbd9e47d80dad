package readmodel_http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"readmodel/internal/app/projection"
	"readmodel/internal/domain"
)

const (
	defaultTransactionLimit = 50
	maxTransactionLimit     = 500
)

type ReadModelHandler struct {
	service projection.ProjectionService
	logger  *zap.Logger
}

func NewReadModelHandler(s projection.ProjectionService, l *zap.Logger) *ReadModelHandler {
	return &ReadModelHandler{service: s, logger: l}
}

type AccountResponse struct {
	AccountID   string          `json:"account_id"`
	OwnerName   string          `json:"owner_name"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	LastUpdated time.Time       `json:"last_updated"`
}

type TransactionResponse struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Description   string          `json:"description"`
	Timestamp     time.Time       `json:"timestamp"`
}

type TransferResponse struct {
	TransferID  string          `json:"transfer_id"`
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Timestamp   time.Time       `json:"timestamp"`
}

func (h *ReadModelHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get account", zap.String("account_id", accountID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, AccountResponse{
		AccountID:   account.AccountID,
		OwnerName:   account.OwnerName,
		Balance:     account.Balance,
		Currency:    account.Currency,
		Status:      account.Status,
		LastUpdated: account.LastUpdated,
	})
}

func (h *ReadModelHandler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		http.Error(w, "Account ID is required", http.StatusBadRequest)
		return
	}

	limit := defaultTransactionLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 || parsed > maxTransactionLimit {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := h.service.ListTransactions(r.Context(), accountID, limit)
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.String("account_id", accountID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := make([]TransactionResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, TransactionResponse{
			TransactionID: rec.TransactionID,
			AccountID:     rec.AccountID,
			Type:          string(rec.Type),
			Amount:        rec.Amount,
			BalanceAfter:  rec.BalanceAfter,
			Description:   rec.Description,
			Timestamp:     rec.Timestamp,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *ReadModelHandler) GetTransferHandler(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "id")
	if transferID == "" {
		http.Error(w, "Transfer ID is required", http.StatusBadRequest)
		return
	}

	transfer, err := h.service.GetTransfer(r.Context(), transferID)
	if err != nil {
		if errors.Is(err, domain.ErrTransferNotFound) {
			http.Error(w, "Transfer not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get transfer", zap.String("transfer_id", transferID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, TransferResponse{
		TransferID:  transfer.TransferID,
		FromAccount: transfer.FromAccount,
		ToAccount:   transfer.ToAccount,
		Amount:      transfer.Amount,
		Description: transfer.Description,
		Status:      transfer.Status,
		Timestamp:   transfer.Timestamp,
	})
}

func (h *ReadModelHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}
