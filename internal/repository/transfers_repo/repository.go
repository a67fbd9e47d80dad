package transfers_repo

import (
	"context"

	"readmodel/internal/domain"
)

type TransferRepository interface {
	// UpsertTransferTx inserts the transfer row if no row with that transfer
	// identifier exists. Returns false when the other side of the transfer
	// (or a redelivery of this side) already created it.
	UpsertTransferTx(ctx context.Context, querier domain.Querier, record *domain.TransferRecord) (bool, error)
	GetTransferTx(ctx context.Context, querier domain.Querier, transferID string) (*domain.TransferRecord, error)
}
