package repository

import (
	"context"

	"github.com/quartzlab/tradepost/internal/domain"
)

// Equip defines the interface for equip-manager persistence
type Equip interface {
	GetInstancesByOwner(ctx context.Context, ownerID string) ([]domain.ItemInstance, error)
	BeginTx(ctx context.Context) (EquipTx, error)
}

// EquipTx defines the interface for equip transactions
type EquipTx interface {
	Tx
	InstanceOps

	// GetEquippedForUpdate locks and returns every currently equipped instance
	// owned by the user, so exclusive-category swaps mutate under one lock set.
	GetEquippedForUpdate(ctx context.Context, ownerID string) ([]domain.ItemInstance, error)
}
