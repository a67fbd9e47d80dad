package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"readmodel/internal/domain"
	"readmodel/internal/domain/event"
	"readmodel/internal/metrics"
	"readmodel/internal/repository/accounts_repo"
	"readmodel/internal/repository/transactions_repo"
	"readmodel/internal/repository/transfers_repo"
)

// ProjectionService applies ledger events to the read-model tables and
// serves queries over them. Apply* methods are idempotent under redelivery:
// a duplicate event leaves the tables exactly as a single delivery would.
type ProjectionService interface {
	ApplyAccountCreated(ctx context.Context, evt event.AccountCreated) error
	ApplyMoneyDeposited(ctx context.Context, evt event.MoneyDeposited) error
	ApplyMoneyWithdrawn(ctx context.Context, evt event.MoneyWithdrawn) error

	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	ListTransactions(ctx context.Context, accountID string, limit int) ([]domain.TransactionRecord, error)
	GetTransfer(ctx context.Context, transferID string) (*domain.TransferRecord, error)
}

type projectionService struct {
	db           domain.Querier
	txManager    domain.TxManager
	accountRepo  accounts_repo.AccountRepository
	txRepo       transactions_repo.TransactionRepository
	transferRepo transfers_repo.TransferRepository
	metrics      *metrics.ProjectionMetrics
	logger       *zap.Logger
}

func NewProjectionService(
	db domain.Querier,
	txManager domain.TxManager,
	accountRepo accounts_repo.AccountRepository,
	txRepo transactions_repo.TransactionRepository,
	transferRepo transfers_repo.TransferRepository,
	m *metrics.ProjectionMetrics,
	logger *zap.Logger,
) ProjectionService {
	return &projectionService{
		db:           db,
		txManager:    txManager,
		accountRepo:  accountRepo,
		txRepo:       txRepo,
		transferRepo: transferRepo,
		metrics:      m,
		logger:       logger,
	}
}

func (s *projectionService) ApplyAccountCreated(ctx context.Context, evt event.AccountCreated) error {
	account := &domain.Account{
		AccountID:   evt.AccountID,
		OwnerName:   evt.OwnerName,
		Balance:     evt.InitialBalance,
		Currency:    evt.Currency,
		Status:      domain.AccountStatusActive,
		LastUpdated: time.Now(),
	}

	var created bool
	err := s.txManager.WithinTx(ctx, func(q domain.Querier) error {
		var txErr error
		created, txErr = s.accountRepo.CreateAccountTx(ctx, q, account)
		return txErr
	})
	if err != nil {
		s.metrics.IncProcessed(event.TypeAccountCreated, metrics.ResultFailed)
		return fmt.Errorf("failed to project AccountCreated for account %s: %w", evt.AccountID, err)
	}

	if !created {
		// First-writer-wins: redelivery of the creation event is the
		// expected steady state under at-least-once delivery.
		s.metrics.IncProcessed(event.TypeAccountCreated, metrics.ResultDuplicate)
		s.logger.Info("Account already projected, skipping duplicate AccountCreated",
			zap.String("event_id", evt.EventID),
			zap.String("account_id", evt.AccountID),
		)
		return nil
	}

	s.metrics.IncProcessed(event.TypeAccountCreated, metrics.ResultApplied)
	s.logger.Info("Projected AccountCreated",
		zap.String("event_id", evt.EventID),
		zap.String("account_id", evt.AccountID),
		zap.String("initial_balance", evt.InitialBalance.String()),
		zap.String("currency", evt.Currency),
	)
	return nil
}

func (s *projectionService) ApplyMoneyDeposited(ctx context.Context, evt event.MoneyDeposited) error {
	return s.applyLedgerEntry(ctx, ledgerEntry{
		eventType:   event.TypeMoneyDeposited,
		eventID:     evt.EventID,
		accountID:   evt.AccountID,
		txType:      domain.TransactionTypeDeposit,
		amount:      evt.Amount,
		delta:       evt.Amount,
		description: evt.Description,
		transferID:  evt.TransferID,
		counterpart: evt.Sender,
		fromAccount: evt.Sender,
		toAccount:   evt.AccountID,
		occurredAt:  evt.CreatedAt,
	})
}

func (s *projectionService) ApplyMoneyWithdrawn(ctx context.Context, evt event.MoneyWithdrawn) error {
	return s.applyLedgerEntry(ctx, ledgerEntry{
		eventType:   event.TypeMoneyWithdrawn,
		eventID:     evt.EventID,
		accountID:   evt.AccountID,
		txType:      domain.TransactionTypeWithdrawal,
		amount:      evt.Amount,
		delta:       evt.Amount.Neg(),
		description: evt.Description,
		transferID:  evt.TransferID,
		counterpart: evt.Recipient,
		fromAccount: evt.AccountID,
		toAccount:   evt.Recipient,
		occurredAt:  evt.CreatedAt,
	})
}

// ledgerEntry carries the direction-independent parts of a deposit or
// withdrawal projection.
type ledgerEntry struct {
	eventType   string
	eventID     string
	accountID   string
	txType      domain.TransactionType
	amount      decimal.Decimal
	delta       decimal.Decimal
	description string
	transferID  string
	counterpart string
	fromAccount string
	toAccount   string
	occurredAt  time.Time
}

// applyLedgerEntry mutates the balance, appends the ledger row and, for
// transfer-correlated events, upserts the transfer row — all in one
// transaction. The ledger insert is the idempotency guard: a duplicate event
// hits the transaction_id primary key and the whole transaction, balance
// delta included, rolls back.
func (s *projectionService) applyLedgerEntry(ctx context.Context, entry ledgerEntry) error {
	if entry.description == "" {
		if entry.txType == domain.TransactionTypeDeposit {
			entry.description = "Deposit"
		} else {
			entry.description = "Withdrawal"
		}
	}

	err := s.txManager.WithinTx(ctx, func(q domain.Querier) error {
		balance, txErr := s.accountRepo.ApplyBalanceDeltaTx(ctx, q, entry.accountID, entry.delta, time.Now())
		if txErr != nil {
			return txErr
		}

		record := &domain.TransactionRecord{
			TransactionID: entry.eventID,
			AccountID:     entry.accountID,
			Type:          entry.txType,
			Amount:        entry.amount,
			BalanceAfter:  balance,
			Description:   entry.description,
			Timestamp:     entry.occurredAt,
		}
		if txErr := s.txRepo.InsertTransactionTx(ctx, q, record); txErr != nil {
			return txErr
		}

		if entry.transferID == "" {
			return nil
		}
		if entry.counterpart == "" {
			s.logger.Warn("Event carries transfer_id without a counterpart account, skipping transfer row",
				zap.String("event_id", entry.eventID),
				zap.String("transfer_id", entry.transferID),
			)
			return nil
		}
		transfer := &domain.TransferRecord{
			TransferID:  entry.transferID,
			FromAccount: entry.fromAccount,
			ToAccount:   entry.toAccount,
			Amount:      entry.amount,
			Description: entry.description,
			Status:      domain.TransferStatusCompleted,
			Timestamp:   entry.occurredAt,
		}
		inserted, txErr := s.transferRepo.UpsertTransferTx(ctx, q, transfer)
		if txErr != nil {
			return txErr
		}
		if !inserted {
			s.logger.Info("Transfer row already present, other side arrived first",
				zap.String("event_id", entry.eventID),
				zap.String("transfer_id", entry.transferID),
			)
		}
		return nil
	})

	switch {
	case err == nil:
		s.metrics.IncProcessed(entry.eventType, metrics.ResultApplied)
		s.logger.Info("Projected ledger entry",
			zap.String("event_id", entry.eventID),
			zap.String("account_id", entry.accountID),
			zap.String("type", string(entry.txType)),
			zap.String("amount", entry.amount.String()),
		)
		return nil

	case errors.Is(err, domain.ErrDuplicateTransaction):
		s.metrics.IncProcessed(entry.eventType, metrics.ResultDuplicate)
		s.logger.Info("Transaction already recorded, skipping duplicate event",
			zap.String("event_id", entry.eventID),
			zap.String("account_id", entry.accountID),
		)
		return nil

	case errors.Is(err, domain.ErrAccountNotFound):
		s.metrics.IncProcessed(entry.eventType, metrics.ResultAnomaly)
		return fmt.Errorf("account %s not yet projected for event %s: %w",
			entry.accountID, entry.eventID, err)

	default:
		s.metrics.IncProcessed(entry.eventType, metrics.ResultFailed)
		return fmt.Errorf("failed to project %s event %s: %w", entry.eventType, entry.eventID, err)
	}
}

func (s *projectionService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.GetAccountTx(ctx, s.db, accountID)
}

func (s *projectionService) ListTransactions(ctx context.Context, accountID string, limit int) ([]domain.TransactionRecord, error) {
	return s.txRepo.ListByAccountTx(ctx, s.db, accountID, limit)
}

func (s *projectionService) GetTransfer(ctx context.Context, transferID string) (*domain.TransferRecord, error) {
	return s.transferRepo.GetTransferTx(ctx, s.db, transferID)
}
