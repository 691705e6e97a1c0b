package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/repository"
)

// EquipRepository implements the equip-manager repository for PostgreSQL
type EquipRepository struct {
	db *pgxpool.Pool
}

// NewEquipRepository creates a new EquipRepository
func NewEquipRepository(db *pgxpool.Pool) *EquipRepository {
	return &EquipRepository{db: db}
}

// GetInstancesByOwner retrieves every instance a user owns
func (r *EquipRepository) GetInstancesByOwner(ctx context.Context, ownerID string) ([]domain.ItemInstance, error) {
	return getInstancesByOwner(ctx, r.db, ownerID)
}

// BeginTx starts a new equip transaction
func (r *EquipRepository) BeginTx(ctx context.Context) (repository.EquipTx, error) {
	return beginTx(ctx, r.db)
}

// GetEquippedForUpdate locks and returns every equipped instance the user owns
func (t *Tx) GetEquippedForUpdate(ctx context.Context, ownerID string) ([]domain.ItemInstance, error) {
	ownerUUID, err := parseUserUUID(ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := t.tx.Query(ctx, `
		SELECT `+instanceColumns+` FROM item_instances
		WHERE owner_id = $1 AND equipped = TRUE
		ORDER BY created_at
		FOR UPDATE`, ownerUUID)
	if err != nil {
		if isLockTimeout(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, fmt.Errorf("failed to lock equipped instances: %w", err)
	}
	defer rows.Close()

	var instances []domain.ItemInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan equipped instance: %w", err)
		}
		instances = append(instances, *inst)
	}
	if err := rows.Err(); err != nil {
		if isLockTimeout(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, err
	}
	return instances, nil
}
