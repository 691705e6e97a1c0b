package repository

import (
	"context"

	"github.com/quartzlab/tradepost/internal/domain"
)

// Catalog defines the interface for catalog definition persistence.
// The read path is shared by every service; the mutation path is reserved for
// the admin boundary and runs inside a transaction so content validation and
// the write commit together.
type Catalog interface {
	GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error)
	GetItems(ctx context.Context) ([]domain.CatalogItem, error)
	GetCaseContents(ctx context.Context, caseItemID int) ([]domain.CaseContent, error)
	BeginTx(ctx context.Context) (CatalogTx, error)
}

// CatalogTx defines the interface for catalog admin transactions
type CatalogTx interface {
	Tx
	GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error)
	InsertItem(ctx context.Context, item *domain.CatalogItem) (int, error)
	UpdateItem(ctx context.Context, itemID int, item *domain.CatalogItem) error
	DeleteItem(ctx context.Context, itemID int) error
	GetCaseContents(ctx context.Context, caseItemID int) ([]domain.CaseContent, error)
	ReplaceCaseContents(ctx context.Context, caseItemID int, contents []domain.CaseContent) error

	// CasesReferencingItem returns the ids of cases whose contents include the item.
	CasesReferencingItem(ctx context.Context, itemID int) ([]int, error)

	// CountInstances returns how many instance rows reference the catalog item.
	CountInstances(ctx context.Context, itemID int) (int, error)
}
