package repository

import (
	"context"

	"github.com/quartzlab/tradepost/internal/domain"
)

// Economy defines the interface for purchase-flow persistence
type Economy interface {
	GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error)
	GetInstancesByOwner(ctx context.Context, ownerID string) ([]domain.ItemInstance, error)
	BeginTx(ctx context.Context) (EconomyTx, error)
}

// EconomyTx defines the interface for purchase transactions: the credit debit
// and the instance grant commit or roll back together.
type EconomyTx interface {
	Tx
	InstanceOps
	WalletOps
}
