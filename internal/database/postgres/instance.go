package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/repository"
)

// InventoryRepository implements the instance-ledger repository for PostgreSQL
type InventoryRepository struct {
	db *pgxpool.Pool
}

// NewInventoryRepository creates a new InventoryRepository
func NewInventoryRepository(db *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetInstance retrieves an item instance by id
func (r *InventoryRepository) GetInstance(ctx context.Context, instanceID uuid.UUID) (*domain.ItemInstance, error) {
	return getInstance(ctx, r.db, instanceID, false)
}

// GetInstancesByOwner retrieves every instance a user owns
func (r *InventoryRepository) GetInstancesByOwner(ctx context.Context, ownerID string) ([]domain.ItemInstance, error) {
	return getInstancesByOwner(ctx, r.db, ownerID)
}

// BeginTx starts a new instance-ledger transaction
func (r *InventoryRepository) BeginTx(ctx context.Context) (repository.InventoryTx, error) {
	return beginTx(ctx, r.db)
}

// ---- repository.InstanceOps on the shared Tx ----

// GetInstanceForUpdate retrieves an instance with a FOR UPDATE row lock
func (t *Tx) GetInstanceForUpdate(ctx context.Context, instanceID uuid.UUID) (*domain.ItemInstance, error) {
	return getInstance(ctx, t.tx, instanceID, true)
}

// FindOwnedInstanceForUpdate locks and returns the instance of a catalog item
// owned by the user, or ErrInstanceNotFound when the user owns none.
func (t *Tx) FindOwnedInstanceForUpdate(ctx context.Context, ownerID string, catalogItemID int) (*domain.ItemInstance, error) {
	ownerUUID, err := parseUserUUID(ownerID)
	if err != nil {
		return nil, err
	}
	row := t.tx.QueryRow(ctx, `
		SELECT `+instanceColumns+` FROM item_instances
		WHERE owner_id = $1 AND item_id = $2
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE`, ownerUUID, catalogItemID)
	inst, err := scanInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstanceNotFound
		}
		if isLockTimeout(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, fmt.Errorf("failed to find owned instance: %w", err)
	}
	return inst, nil
}

// InsertInstance creates a new instance row
func (t *Tx) InsertInstance(ctx context.Context, inst *domain.ItemInstance) error {
	return insertInstance(ctx, t.tx, inst)
}

// UpdateInstance persists a mutated instance row
func (t *Tx) UpdateInstance(ctx context.Context, inst *domain.ItemInstance) error {
	return updateInstance(ctx, t.tx, inst)
}

// DeleteInstance removes an instance row
func (t *Tx) DeleteInstance(ctx context.Context, instanceID uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM item_instances WHERE instance_id = $1`, instanceID)
	if err != nil {
		return fmt.Errorf("failed to delete item instance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInstanceNotFound
	}
	return nil
}

// LockedInstances reports which of the given instances are referenced by a
// PENDING trade other than excludeTrade.
func (t *Tx) LockedInstances(ctx context.Context, instanceIDs []uuid.UUID, excludeTrade uuid.UUID) ([]uuid.UUID, error) {
	if len(instanceIDs) == 0 {
		return nil, nil
	}
	rows, err := t.tx.Query(ctx, `
		SELECT DISTINCT ti.instance_id
		FROM trade_items ti
		JOIN trades tr ON tr.trade_id = ti.trade_id
		WHERE ti.instance_id = ANY($1) AND tr.status = $2 AND tr.trade_id <> $3`,
		instanceIDs, domain.TradePending, excludeTrade)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade locks: %w", err)
	}
	defer rows.Close()

	var locked []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan trade lock: %w", err)
		}
		locked = append(locked, id)
	}
	return locked, rows.Err()
}
