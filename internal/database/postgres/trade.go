package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/repository"
)

// TradeRepository implements the trade repository for PostgreSQL
type TradeRepository struct {
	db *pgxpool.Pool
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *pgxpool.Pool) *TradeRepository {
	return &TradeRepository{db: db}
}

const tradeColumns = `trade_id, initiator_id, receiver_id, status, created_at, expires_at`

func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var (
		t           domain.Trade
		initiatorID uuid.UUID
		receiverID  uuid.UUID
	)
	err := row.Scan(&t.ID, &initiatorID, &receiverID, &t.Status, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		return nil, err
	}
	t.InitiatorID = initiatorID.String()
	t.ReceiverID = receiverID.String()
	return &t, nil
}

func loadTradeItems(ctx context.Context, q querier, trade *domain.Trade) error {
	rows, err := q.Query(ctx,
		`SELECT trade_id, instance_id, offered_by FROM trade_items WHERE trade_id = $1 ORDER BY instance_id`,
		trade.ID)
	if err != nil {
		return fmt.Errorf("failed to query trade items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item      domain.TradeItem
			offeredBy uuid.UUID
		)
		if err := rows.Scan(&item.TradeID, &item.InstanceID, &offeredBy); err != nil {
			return fmt.Errorf("failed to scan trade item: %w", err)
		}
		item.OfferedBy = offeredBy.String()
		trade.Items = append(trade.Items, item)
	}
	return rows.Err()
}

func getTrade(ctx context.Context, q querier, tradeID uuid.UUID, forUpdate bool) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE trade_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	trade, err := scanTrade(q.QueryRow(ctx, query, tradeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTradeNotFound
		}
		if isLockTimeout(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}
	if err := loadTradeItems(ctx, q, trade); err != nil {
		return nil, err
	}
	return trade, nil
}

// GetTrade retrieves a trade with its offered items
func (r *TradeRepository) GetTrade(ctx context.Context, tradeID uuid.UUID) (*domain.Trade, error) {
	return getTrade(ctx, r.db, tradeID, false)
}

// GetTradesByUser retrieves trades where the user is initiator or receiver,
// optionally filtered by status (empty status means all).
func (r *TradeRepository) GetTradesByUser(ctx context.Context, userID string, status domain.TradeStatus) ([]domain.Trade, error) {
	userUUID, err := parseUserUUID(userID)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + tradeColumns + ` FROM trades WHERE (initiator_id = $1 OR receiver_id = $1)`
	args := []any{userUUID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, *trade)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range trades {
		if err := loadTradeItems(ctx, r.db, &trades[i]); err != nil {
			return nil, err
		}
	}
	return trades, nil
}

// ExpiredPendingTrades returns ids of PENDING trades whose deadline passed
func (r *TradeRepository) ExpiredPendingTrades(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT trade_id FROM trades
		WHERE status = $1 AND expires_at < $2
		ORDER BY expires_at
		LIMIT $3`, domain.TradePending, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired trades: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expired trade id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// BeginTx starts a new trade transaction
func (r *TradeRepository) BeginTx(ctx context.Context) (repository.TradeTx, error) {
	return beginTx(ctx, r.db)
}

// ---- repository.TradeTx operations on the shared Tx ----

// InsertTrade creates the trade row and its offered items
func (t *Tx) InsertTrade(ctx context.Context, trade *domain.Trade) error {
	initiatorUUID, err := parseUserUUID(trade.InitiatorID)
	if err != nil {
		return err
	}
	receiverUUID, err := parseUserUUID(trade.ReceiverID)
	if err != nil {
		return err
	}

	trade.CreatedAt = time.Now().UTC()
	_, err = t.tx.Exec(ctx, `
		INSERT INTO trades (trade_id, initiator_id, receiver_id, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		trade.ID, initiatorUUID, receiverUUID, trade.Status, trade.CreatedAt, trade.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert trade: %w", err)
	}

	for _, item := range trade.Items {
		offeredBy, err := parseUserUUID(item.OfferedBy)
		if err != nil {
			return err
		}
		_, err = t.tx.Exec(ctx,
			`INSERT INTO trade_items (trade_id, instance_id, offered_by) VALUES ($1, $2, $3)`,
			trade.ID, item.InstanceID, offeredBy)
		if err != nil {
			return fmt.Errorf("failed to insert trade item: %w", err)
		}
	}
	return nil
}

// GetTradeForUpdate retrieves a trade with an exclusive row lock
func (t *Tx) GetTradeForUpdate(ctx context.Context, tradeID uuid.UUID) (*domain.Trade, error) {
	return getTrade(ctx, t.tx, tradeID, true)
}

// UpdateTradeStatus transitions the trade to the given status
func (t *Tx) UpdateTradeStatus(ctx context.Context, tradeID uuid.UUID, status domain.TradeStatus) error {
	tag, err := t.tx.Exec(ctx, `UPDATE trades SET status = $2 WHERE trade_id = $1`, tradeID, status)
	if err != nil {
		return fmt.Errorf("failed to update trade status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTradeNotFound
	}
	return nil
}
