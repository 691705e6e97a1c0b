package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quartzlab/tradepost/internal/domain"
)

// Trade defines the interface for trade persistence
type Trade interface {
	GetTrade(ctx context.Context, tradeID uuid.UUID) (*domain.Trade, error)
	GetTradesByUser(ctx context.Context, userID string, status domain.TradeStatus) ([]domain.Trade, error)

	// ExpiredPendingTrades returns ids of PENDING trades whose deadline passed.
	ExpiredPendingTrades(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)

	BeginTx(ctx context.Context) (TradeTx, error)
}

// TradeTx defines the interface for trade transactions. GetTradeForUpdate
// takes an exclusive lock on the trade row; every state transition and the
// ownership re-checks that precede it happen under that lock.
type TradeTx interface {
	Tx
	InstanceOps
	InsertTrade(ctx context.Context, trade *domain.Trade) error
	GetTradeForUpdate(ctx context.Context, tradeID uuid.UUID) (*domain.Trade, error)
	UpdateTradeStatus(ctx context.Context, tradeID uuid.UUID, status domain.TradeStatus) error
}
