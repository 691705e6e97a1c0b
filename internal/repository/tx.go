package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/quartzlab/tradepost/internal/domain"
)

// Tx defines the interface for transactional operations
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// InstanceOps are the item-instance row operations available inside a
// transaction. All *ForUpdate reads take a row lock for the remainder of the
// transaction; mutations must happen under that lock.
type InstanceOps interface {
	GetInstanceForUpdate(ctx context.Context, instanceID uuid.UUID) (*domain.ItemInstance, error)
	FindOwnedInstanceForUpdate(ctx context.Context, ownerID string, catalogItemID int) (*domain.ItemInstance, error)
	InsertInstance(ctx context.Context, instance *domain.ItemInstance) error
	UpdateInstance(ctx context.Context, instance *domain.ItemInstance) error
	DeleteInstance(ctx context.Context, instanceID uuid.UUID) error

	// LockedInstances reports which of the given instances are referenced by a
	// PENDING trade other than excludeTrade. Pass uuid.Nil to exclude nothing.
	LockedInstances(ctx context.Context, instanceIDs []uuid.UUID, excludeTrade uuid.UUID) ([]uuid.UUID, error)
}

// WalletOps are the wallet row operations available inside a transaction.
// GetWalletForUpdate creates a zero-balance row when the user has none yet,
// then locks it.
type WalletOps interface {
	GetWalletForUpdate(ctx context.Context, userID string) (*domain.Wallet, error)
	UpdateWallet(ctx context.Context, wallet *domain.Wallet) error
}
