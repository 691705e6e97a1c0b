package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/repository"
)

// CatalogRepository implements the catalog repository for PostgreSQL
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetItem retrieves a catalog item by id
func (r *CatalogRepository) GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	return getCatalogItem(ctx, r.db, itemID)
}

// GetItems retrieves every catalog item
func (r *CatalogRepository) GetItems(ctx context.Context) ([]domain.CatalogItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+catalogItemColumns+` FROM item_catalog ORDER BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog items: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetCaseContents retrieves the loot table of a case
func (r *CatalogRepository) GetCaseContents(ctx context.Context, caseItemID int) ([]domain.CaseContent, error) {
	return getCaseContents(ctx, r.db, caseItemID)
}

// BeginTx starts a new catalog admin transaction
func (r *CatalogRepository) BeginTx(ctx context.Context) (repository.CatalogTx, error) {
	return beginTx(ctx, r.db)
}

// ---- repository.CatalogTx admin operations on the shared Tx ----

// GetItem retrieves a catalog item inside the transaction
func (t *Tx) GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	return getCatalogItem(ctx, t.tx, itemID)
}

// GetCaseContents retrieves a case's loot table inside the transaction
func (t *Tx) GetCaseContents(ctx context.Context, caseItemID int) ([]domain.CaseContent, error) {
	return getCaseContents(ctx, t.tx, caseItemID)
}

// InsertItem creates a catalog item and returns its id
func (t *Tx) InsertItem(ctx context.Context, item *domain.CatalogItem) (int, error) {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	var multiplier, bonusLootChance *float64
	var maxDurability, maxRepairs *int
	if item.Rod != nil {
		multiplier = &item.Rod.Multiplier
		bonusLootChance = &item.Rod.BonusLootChance
		maxDurability = &item.Rod.MaxDurability
		maxRepairs = &item.Rod.MaxRepairs
	}

	var id int
	err := t.tx.QueryRow(ctx, `
		INSERT INTO item_catalog (name, category, price, rarity, active, expires_at, required_role,
			is_case, rod_multiplier, rod_bonus_loot_chance, rod_max_durability, rod_max_repairs,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING item_id`,
		item.Name, item.Category, item.Price, item.Rarity, item.Active, item.ExpiresAt,
		item.RequiredRole, item.IsCase, multiplier, bonusLootChance, maxDurability, maxRepairs,
		item.CreatedAt, item.UpdatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert catalog item: %w", err)
	}
	item.ID = id
	return id, nil
}

// UpdateItem overwrites a catalog item definition
func (t *Tx) UpdateItem(ctx context.Context, itemID int, item *domain.CatalogItem) error {
	var multiplier, bonusLootChance *float64
	var maxDurability, maxRepairs *int
	if item.Rod != nil {
		multiplier = &item.Rod.Multiplier
		bonusLootChance = &item.Rod.BonusLootChance
		maxDurability = &item.Rod.MaxDurability
		maxRepairs = &item.Rod.MaxRepairs
	}
	item.UpdatedAt = time.Now().UTC()

	tag, err := t.tx.Exec(ctx, `
		UPDATE item_catalog
		SET name = $2, category = $3, price = $4, rarity = $5, active = $6, expires_at = $7,
			required_role = $8, is_case = $9, rod_multiplier = $10, rod_bonus_loot_chance = $11,
			rod_max_durability = $12, rod_max_repairs = $13, updated_at = $14
		WHERE item_id = $1`,
		itemID, item.Name, item.Category, item.Price, item.Rarity, item.Active, item.ExpiresAt,
		item.RequiredRole, item.IsCase, multiplier, bonusLootChance, maxDurability, maxRepairs,
		item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update catalog item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// DeleteItem removes a catalog item definition
func (t *Tx) DeleteItem(ctx context.Context, itemID int) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM item_catalog WHERE item_id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete catalog item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// ReplaceCaseContents swaps a case's loot table for the given rows
func (t *Tx) ReplaceCaseContents(ctx context.Context, caseItemID int, contents []domain.CaseContent) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM case_contents WHERE case_item_id = $1`, caseItemID); err != nil {
		return fmt.Errorf("failed to clear case contents: %w", err)
	}
	for _, c := range contents {
		_, err := t.tx.Exec(ctx,
			`INSERT INTO case_contents (case_item_id, item_id, drop_rate) VALUES ($1, $2, $3)`,
			caseItemID, c.ItemID, c.DropRate)
		if err != nil {
			return fmt.Errorf("failed to insert case content: %w", err)
		}
	}
	return nil
}

// CasesReferencingItem returns the ids of cases whose contents include the item
func (t *Tx) CasesReferencingItem(ctx context.Context, itemID int) ([]int, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT case_item_id FROM case_contents WHERE item_id = $1 ORDER BY case_item_id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query case references: %w", err)
	}
	defer rows.Close()

	var caseIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan case reference: %w", err)
		}
		caseIDs = append(caseIDs, id)
	}
	return caseIDs, rows.Err()
}

// CountInstances returns how many instance rows reference the catalog item
func (t *Tx) CountInstances(ctx context.Context, itemID int) (int, error) {
	var count int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM item_instances WHERE item_id = $1`, itemID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count item instances: %w", err)
	}
	return count, nil
}
