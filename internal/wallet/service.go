package wallet

import (
	"context"
	"fmt"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/repository"
)

// Service defines the interface for credit wallet operations
type Service interface {
	GetBalance(ctx context.Context, userID string) (*domain.Wallet, error)
	Grant(ctx context.Context, userID string, amount int64) (*domain.Wallet, error)
}

type service struct {
	repo repository.Wallet
}

// NewService creates a new wallet service
func NewService(repo repository.Wallet) Service {
	return &service{repo: repo}
}

func (s *service) GetBalance(ctx context.Context, userID string) (*domain.Wallet, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgGetBalanceCalled, "userID", userID)
	return s.repo.GetWallet(ctx, userID)
}

// Grant credits a user's wallet outside any purchase flow. Reward systems and
// admin top-ups enter through here.
func (s *service) Grant(ctx context.Context, userID string, amount int64) (*domain.Wallet, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgGrantCalled, "userID", userID, "amount", amount)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	w, err := Credit(ctx, tx, userID, amount)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	log.Info(LogMsgCreditsGranted, "userID", userID, "amount", amount, "balance", w.Balance)
	return w, nil
}

// Debit removes credits from a user's wallet inside an open transaction. The
// wallet row stays locked until the enclosing transaction resolves, so the
// balance check and the write are one unit.
func Debit(ctx context.Context, tx repository.WalletOps, userID string, amount int64) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: debit amount must be positive, got %d", domain.ErrInvalidInput, amount)
	}

	w, err := tx.GetWalletForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetWalletFailed, err)
	}

	if w.Balance < amount {
		return nil, fmt.Errorf("%w: need %d, have %d", domain.ErrInsufficientCredits, amount, w.Balance)
	}

	w.Balance -= amount
	if err := tx.UpdateWallet(ctx, w); err != nil {
		return nil, fmt.Errorf(ErrMsgUpdateWalletFailed, err)
	}
	return w, nil
}

// Credit adds credits to a user's wallet inside an open transaction.
// Unconditional: the wallet row is created on first touch.
func Credit(ctx context.Context, tx repository.WalletOps, userID string, amount int64) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit amount must be positive, got %d", domain.ErrInvalidInput, amount)
	}

	w, err := tx.GetWalletForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgGetWalletFailed, err)
	}

	w.Balance += amount
	if err := tx.UpdateWallet(ctx, w); err != nil {
		return nil, fmt.Errorf(ErrMsgUpdateWalletFailed, err)
	}
	return w, nil
}
