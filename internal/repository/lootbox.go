package repository

import (
	"context"

	"github.com/quartzlab/tradepost/internal/domain"
)

// Lootbox defines the interface for case-resolution persistence
type Lootbox interface {
	GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error)
	GetCaseContents(ctx context.Context, caseItemID int) ([]domain.CaseContent, error)
	BeginTx(ctx context.Context) (LootboxTx, error)
}

// LootboxTx defines the interface for case-open transactions: the case
// decrement, the won-item grant and any duplicate compensation settle as one
// atomic unit.
type LootboxTx interface {
	Tx
	InstanceOps
	WalletOps
}
