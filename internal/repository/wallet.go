package repository

import (
	"context"

	"github.com/quartzlab/tradepost/internal/domain"
)

// Wallet defines the interface for credit balance persistence
type Wallet interface {
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	BeginTx(ctx context.Context) (WalletTx, error)
}

// WalletTx defines the interface for wallet transactions
type WalletTx interface {
	Tx
	WalletOps
}
