package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/repository"
)

// EconomyRepository implements the purchase-flow repository for PostgreSQL
type EconomyRepository struct {
	db *pgxpool.Pool
}

// NewEconomyRepository creates a new EconomyRepository
func NewEconomyRepository(db *pgxpool.Pool) *EconomyRepository {
	return &EconomyRepository{db: db}
}

// GetItem retrieves a catalog item by id
func (r *EconomyRepository) GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	return getCatalogItem(ctx, r.db, itemID)
}

// GetInstancesByOwner retrieves every instance a user owns
func (r *EconomyRepository) GetInstancesByOwner(ctx context.Context, ownerID string) ([]domain.ItemInstance, error) {
	return getInstancesByOwner(ctx, r.db, ownerID)
}

// BeginTx starts a new purchase transaction
func (r *EconomyRepository) BeginTx(ctx context.Context) (repository.EconomyTx, error) {
	return beginTx(ctx, r.db)
}
