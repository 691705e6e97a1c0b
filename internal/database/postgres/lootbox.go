package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/repository"
)

// LootboxRepository implements the case-resolution repository for PostgreSQL
type LootboxRepository struct {
	db *pgxpool.Pool
}

// NewLootboxRepository creates a new LootboxRepository
func NewLootboxRepository(db *pgxpool.Pool) *LootboxRepository {
	return &LootboxRepository{db: db}
}

// GetItem retrieves a catalog item by id
func (r *LootboxRepository) GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	return getCatalogItem(ctx, r.db, itemID)
}

// GetCaseContents retrieves the loot table of a case
func (r *LootboxRepository) GetCaseContents(ctx context.Context, caseItemID int) ([]domain.CaseContent, error) {
	return getCaseContents(ctx, r.db, caseItemID)
}

// BeginTx starts a new case-open transaction
func (r *LootboxRepository) BeginTx(ctx context.Context) (repository.LootboxTx, error) {
	return beginTx(ctx, r.db)
}
