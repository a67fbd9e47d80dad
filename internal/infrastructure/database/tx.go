package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"readmodel/internal/domain"
)

// SQLTxManager implements domain.TxManager on a *sql.DB.
type SQLTxManager struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLTxManager(db *sql.DB, logger *zap.Logger) *SQLTxManager {
	return &SQLTxManager{db: db, logger: logger}
}

func (m *SQLTxManager) WithinTx(ctx context.Context, fn func(q domain.Querier) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				m.logger.Error("Failed to roll back transaction after panic", zap.Error(rbErr))
			}
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			m.logger.Error("Failed to roll back transaction", zap.Error(rbErr))
			return fmt.Errorf("rollback failed after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
