package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/repository"
)

// WalletRepository implements the currency-ledger repository for PostgreSQL
type WalletRepository struct {
	db *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository
func NewWalletRepository(db *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetWallet retrieves a user's wallet. Users without a wallet row yet are
// reported with a zero balance rather than an error.
func (r *WalletRepository) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	userUUID, err := parseUserUUID(userID)
	if err != nil {
		return nil, err
	}
	var w domain.Wallet
	w.UserID = userID
	err = r.db.QueryRow(ctx, `SELECT balance, updated_at FROM wallets WHERE user_id = $1`, userUUID).
		Scan(&w.Balance, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.Wallet{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &w, nil
}

// BeginTx starts a new wallet transaction
func (r *WalletRepository) BeginTx(ctx context.Context) (repository.WalletTx, error) {
	return beginTx(ctx, r.db)
}

// ---- repository.WalletOps on the shared Tx ----

// GetWalletForUpdate ensures the user's wallet row exists, locks it and
// returns it.
func (t *Tx) GetWalletForUpdate(ctx context.Context, userID string) (*domain.Wallet, error) {
	userUUID, err := parseUserUUID(userID)
	if err != nil {
		return nil, err
	}
	_, err = t.tx.Exec(ctx,
		`INSERT INTO wallets (user_id, balance) VALUES ($1, 0) ON CONFLICT (user_id) DO NOTHING`,
		userUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure wallet row: %w", err)
	}

	var w domain.Wallet
	w.UserID = userID
	err = t.tx.QueryRow(ctx,
		`SELECT balance, updated_at FROM wallets WHERE user_id = $1 FOR UPDATE`, userUUID).
		Scan(&w.Balance, &w.UpdatedAt)
	if err != nil {
		if isLockTimeout(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return &w, nil
}

// UpdateWallet persists a mutated wallet balance
func (t *Tx) UpdateWallet(ctx context.Context, w *domain.Wallet) error {
	userUUID, err := parseUserUUID(w.UserID)
	if err != nil {
		return err
	}
	w.UpdatedAt = time.Now().UTC()
	tag, err := t.tx.Exec(ctx,
		`UPDATE wallets SET balance = $2, updated_at = $3 WHERE user_id = $1`,
		userUUID, w.Balance, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}
