package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/quartzlab/tradepost/internal/domain"
)

// Inventory defines the interface for item-instance persistence
type Inventory interface {
	GetInstance(ctx context.Context, instanceID uuid.UUID) (*domain.ItemInstance, error)
	GetInstancesByOwner(ctx context.Context, ownerID string) ([]domain.ItemInstance, error)
	BeginTx(ctx context.Context) (InventoryTx, error)
}

// InventoryTx defines the interface for instance-ledger transactions
type InventoryTx interface {
	Tx
	InstanceOps
}
