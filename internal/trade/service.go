package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/event"
	"github.com/quartzlab/tradepost/internal/inventory"
	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/metrics"
	"github.com/quartzlab/tradepost/internal/repository"
)

// Proposal is the input for opening a trade. Offered instances belong to the
// initiator, requested instances to the receiver; either side may be empty,
// but not both.
type Proposal struct {
	InitiatorID string
	ReceiverID  string
	Offered     []uuid.UUID
	Requested   []uuid.UUID
	TTL         time.Duration // zero means DefaultTradeTTL
}

// Service defines the trade negotiation interface
type Service interface {
	ProposeTrade(ctx context.Context, p Proposal) (*domain.Trade, error)
	AcceptTrade(ctx context.Context, userID string, tradeID uuid.UUID) (*domain.Trade, error)
	DeclineTrade(ctx context.Context, userID string, tradeID uuid.UUID) (*domain.Trade, error)
	CancelTrade(ctx context.Context, userID string, tradeID uuid.UUID) (*domain.Trade, error)
	GetTrade(ctx context.Context, tradeID uuid.UUID) (*domain.Trade, error)
	GetUserTrades(ctx context.Context, userID string, status domain.TradeStatus) ([]domain.Trade, error)

	// ExpireTrades sweeps PENDING trades past their deadline to EXPIRED and
	// returns how many it settled. Idempotent; driven by the scheduler.
	ExpireTrades(ctx context.Context, limit int) (int, error)
}

type service struct {
	repo       repository.Trade
	publisher  event.Publisher
	defaultTTL time.Duration
	now        func() time.Time
}

// NewService creates a new trade service. A non-positive defaultTTL falls back
// to DefaultTradeTTL.
func NewService(repo repository.Trade, publisher event.Publisher, defaultTTL time.Duration) Service {
	if defaultTTL <= 0 {
		defaultTTL = domain.DefaultTradeTTL
	}
	return &service{
		repo:       repo,
		publisher:  publisher,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (p *Proposal) validate() error {
	if p.InitiatorID == p.ReceiverID {
		return domain.ErrTradeSelf
	}
	total := len(p.Offered) + len(p.Requested)
	if total == 0 {
		return fmt.Errorf("%w: trade carries no items", domain.ErrInvalidInput)
	}
	if total > domain.MaxTradeItems {
		return fmt.Errorf("%w: %d items exceeds limit of %d", domain.ErrInvalidInput, total, domain.MaxTradeItems)
	}
	if p.TTL < 0 || p.TTL > domain.MaxTradeTTL {
		return fmt.Errorf("%w: ttl %s out of range", domain.ErrInvalidInput, p.TTL)
	}
	seen := make(map[uuid.UUID]bool, total)
	for _, id := range append(append([]uuid.UUID{}, p.Offered...), p.Requested...) {
		if seen[id] {
			return fmt.Errorf("%w: instance %s listed twice", domain.ErrInvalidInput, id)
		}
		seen[id] = true
	}
	return nil
}

// ProposeTrade opens a PENDING trade and locks every referenced instance
// against other trades. Validation and the insert share one transaction, so a
// failed proposal leaves nothing pending.
func (s *service) ProposeTrade(ctx context.Context, p Proposal) (*domain.Trade, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgProposeTradeCalled,
		"initiatorID", p.InitiatorID,
		"receiverID", p.ReceiverID,
		"offered", len(p.Offered),
		"requested", len(p.Requested))

	if err := p.validate(); err != nil {
		return nil, err
	}
	ttl := p.TTL
	if ttl == 0 {
		ttl = s.defaultTTL
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	trade := &domain.Trade{
		ID:          uuid.New(),
		InitiatorID: p.InitiatorID,
		ReceiverID:  p.ReceiverID,
		Status:      domain.TradePending,
		ExpiresAt:   s.now().UTC().Add(ttl),
	}

	// 1. Lock every instance and verify the right side owns it
	allIDs := make([]uuid.UUID, 0, len(p.Offered)+len(p.Requested))
	for _, id := range p.Offered {
		if err := s.verifyOffered(ctx, tx, id, p.InitiatorID); err != nil {
			return nil, err
		}
		trade.Items = append(trade.Items, domain.TradeItem{TradeID: trade.ID, InstanceID: id, OfferedBy: p.InitiatorID})
		allIDs = append(allIDs, id)
	}
	for _, id := range p.Requested {
		if err := s.verifyOffered(ctx, tx, id, p.ReceiverID); err != nil {
			return nil, err
		}
		trade.Items = append(trade.Items, domain.TradeItem{TradeID: trade.ID, InstanceID: id, OfferedBy: p.ReceiverID})
		allIDs = append(allIDs, id)
	}

	// 2. No instance may already sit in another pending trade
	locked, err := tx.LockedInstances(ctx, allIDs, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgCheckLocksFailed, err)
	}
	if len(locked) > 0 {
		return nil, fmt.Errorf("%w: instance %s", domain.ErrItemLocked, locked[0])
	}

	// 3. Create the trade
	if err := tx.InsertTrade(ctx, trade); err != nil {
		return nil, fmt.Errorf(ErrMsgInsertTradeFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}

	s.publishProposed(ctx, trade)
	log.Info(LogMsgTradeProposed, "tradeID", trade.ID, "expiresAt", trade.ExpiresAt)
	return trade, nil
}

func (s *service) publishProposed(ctx context.Context, trade *domain.Trade) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishWithRetry(ctx, event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.Type(domain.EventTypeTradeProposed),
		Payload: domain.TradeProposedPayload{
			TradeID:     trade.ID.String(),
			InitiatorID: trade.InitiatorID,
			ReceiverID:  trade.ReceiverID,
			ItemCount:   len(trade.Items),
			ExpiresAt:   trade.ExpiresAt.Unix(),
			Timestamp:   s.now().Unix(),
		},
	})
}

// verifyOffered locks an instance and checks it can enter a trade.
func (s *service) verifyOffered(ctx context.Context, tx repository.TradeTx, instanceID uuid.UUID, ownerID string) error {
	inst, err := tx.GetInstanceForUpdate(ctx, instanceID)
	if err != nil {
		return err
	}
	if !inst.OwnedBy(ownerID) {
		return fmt.Errorf("%w: instance %s", domain.ErrItemNotOwned, instanceID)
	}
	if inst.Equipped {
		return fmt.Errorf("%w: instance %s", domain.ErrItemEquipped, instanceID)
	}
	return nil
}

// AcceptTrade settles a pending trade: ownership of every item is re-checked
// under the trade row lock, then all instances swap sides atomically. A stale
// offer cancels the trade instead of settling it.
func (s *service) AcceptTrade(ctx context.Context, userID string, tradeID uuid.UUID) (*domain.Trade, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgAcceptTradeCalled, "userID", userID, "tradeID", tradeID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	trade, err := tx.GetTradeForUpdate(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade.ReceiverID != userID {
		return nil, fmt.Errorf("%w: only the receiver may accept", domain.ErrTradeNotActionable)
	}
	if trade.Status != domain.TradePending {
		return nil, fmt.Errorf("%w: trade is %s", domain.ErrTradeNotActionable, trade.Status)
	}

	// A trade past its deadline settles as EXPIRED, not ACCEPTED
	if trade.Expired(s.now()) {
		if err := s.finishTrade(ctx, tx, trade, domain.TradeExpired); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: trade expired", domain.ErrTradeNotActionable)
	}

	// Re-validate every offer under the lock; staleness cancels
	for _, item := range trade.Items {
		inst, err := tx.GetInstanceForUpdate(ctx, item.InstanceID)
		switch {
		case errors.Is(err, domain.ErrInstanceNotFound):
			inst = nil
		case err != nil:
			return nil, err
		}
		if inst == nil || !inst.OwnedBy(item.OfferedBy) {
			if cErr := s.finishTrade(ctx, tx, trade, domain.TradeCancelled); cErr != nil {
				return nil, cErr
			}
			return nil, fmt.Errorf("%w: instance %s left the offering side", domain.ErrItemNotOwned, item.InstanceID)
		}
	}

	// Transfer every instance to the opposite party
	for _, item := range trade.Items {
		to := trade.ReceiverID
		if item.OfferedBy == trade.ReceiverID {
			to = trade.InitiatorID
		}
		if err := inventory.Transfer(ctx, tx, item.InstanceID, item.OfferedBy, to); err != nil {
			return nil, err
		}
	}

	if err := s.finishTrade(ctx, tx, trade, domain.TradeAccepted); err != nil {
		return nil, err
	}

	s.publishSettled(ctx, trade, domain.EventTypeTradeAccepted)
	log.Info(LogMsgTradeAccepted, "tradeID", tradeID, "items", len(trade.Items))
	return trade, nil
}

// DeclineTrade lets the receiver refuse a pending trade, releasing its locks.
func (s *service) DeclineTrade(ctx context.Context, userID string, tradeID uuid.UUID) (*domain.Trade, error) {
	logger.FromContext(ctx).Info(LogMsgDeclineTradeCalled, "userID", userID, "tradeID", tradeID)
	return s.close(ctx, userID, tradeID, domain.TradeDeclined)
}

// CancelTrade lets the initiator withdraw a pending trade, releasing its locks.
func (s *service) CancelTrade(ctx context.Context, userID string, tradeID uuid.UUID) (*domain.Trade, error) {
	logger.FromContext(ctx).Info(LogMsgCancelTradeCalled, "userID", userID, "tradeID", tradeID)
	return s.close(ctx, userID, tradeID, domain.TradeCancelled)
}

func (s *service) close(ctx context.Context, userID string, tradeID uuid.UUID, status domain.TradeStatus) (*domain.Trade, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	trade, err := tx.GetTradeForUpdate(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	switch status {
	case domain.TradeDeclined:
		if trade.ReceiverID != userID {
			return nil, fmt.Errorf("%w: only the receiver may decline", domain.ErrTradeNotActionable)
		}
	case domain.TradeCancelled:
		if trade.InitiatorID != userID {
			return nil, fmt.Errorf("%w: only the initiator may cancel", domain.ErrTradeNotActionable)
		}
	}
	if trade.Status != domain.TradePending {
		return nil, fmt.Errorf("%w: trade is %s", domain.ErrTradeNotActionable, trade.Status)
	}

	if err := s.finishTrade(ctx, tx, trade, status); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgTradeClosed, "tradeID", tradeID, "status", status)
	return trade, nil
}

// finishTrade transitions the trade and commits the enclosing transaction.
func (s *service) finishTrade(ctx context.Context, tx repository.TradeTx, trade *domain.Trade, status domain.TradeStatus) error {
	if err := tx.UpdateTradeStatus(ctx, trade.ID, status); err != nil {
		return fmt.Errorf(ErrMsgUpdateStatusFailed, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf(ErrMsgCommitTransactionFailed, err)
	}
	trade.Status = status
	metrics.RecordTradeSettled(string(status))
	return nil
}

func (s *service) GetTrade(ctx context.Context, tradeID uuid.UUID) (*domain.Trade, error) {
	return s.repo.GetTrade(ctx, tradeID)
}

func (s *service) GetUserTrades(ctx context.Context, userID string, status domain.TradeStatus) ([]domain.Trade, error) {
	if status != "" {
		switch status {
		case domain.TradePending, domain.TradeAccepted, domain.TradeDeclined, domain.TradeCancelled, domain.TradeExpired:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
		}
	}
	return s.repo.GetTradesByUser(ctx, userID, status)
}

// ExpireTrades settles overdue PENDING trades. Each trade expires in its own
// transaction so one failure doesn't hold up the sweep.
func (s *service) ExpireTrades(ctx context.Context, limit int) (int, error) {
	log := logger.FromContext(ctx)

	ids, err := s.repo.ExpiredPendingTrades(ctx, s.now(), limit)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgListExpiredFailed, err)
	}

	expired := 0
	for _, id := range ids {
		if err := s.expireOne(ctx, id); err != nil {
			log.Error(LogMsgExpireTradeFailed, "tradeID", id, "error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		log.Info(LogMsgTradesExpired, "count", expired)
	}
	return expired, nil
}

func (s *service) expireOne(ctx context.Context, tradeID uuid.UUID) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf(ErrMsgBeginTransactionFailed, err)
	}
	defer repository.SafeRollback(ctx, tx)

	trade, err := tx.GetTradeForUpdate(ctx, tradeID)
	if err != nil {
		return err
	}
	// Another actor may have settled it between the listing and the lock
	if trade.Status != domain.TradePending || !trade.Expired(s.now()) {
		return nil
	}

	if err := s.finishTrade(ctx, tx, trade, domain.TradeExpired); err != nil {
		return err
	}

	s.publishSettled(ctx, trade, domain.EventTypeTradeExpired)
	return nil
}

func (s *service) publishSettled(ctx context.Context, trade *domain.Trade, eventType string) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishWithRetry(ctx, event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.Type(eventType),
		Payload: domain.TradeSettledPayload{
			TradeID:     trade.ID.String(),
			InitiatorID: trade.InitiatorID,
			ReceiverID:  trade.ReceiverID,
			Status:      string(trade.Status),
			ItemCount:   len(trade.Items),
			Timestamp:   s.now().Unix(),
		},
	})
}
