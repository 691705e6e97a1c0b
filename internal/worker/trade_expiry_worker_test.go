package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/event"
	"github.com/quartzlab/tradepost/internal/trade"
)

// sweepRecorder implements trade.Service; only ExpireTrades is expected to run.
type sweepRecorder struct {
	mu     sync.Mutex
	limits []int
	err    error
	sweeps chan struct{}
}

func newSweepRecorder() *sweepRecorder {
	return &sweepRecorder{sweeps: make(chan struct{}, 16)}
}

func (r *sweepRecorder) ExpireTrades(ctx context.Context, limit int) (int, error) {
	r.mu.Lock()
	r.limits = append(r.limits, limit)
	err := r.err
	r.mu.Unlock()
	r.sweeps <- struct{}{}
	if err != nil {
		return 0, err
	}
	return 1, nil
}

func (r *sweepRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limits)
}

func (r *sweepRecorder) ProposeTrade(ctx context.Context, p trade.Proposal) (*domain.Trade, error) {
	panic("not expected")
}

func (r *sweepRecorder) AcceptTrade(ctx context.Context, userID string, tradeID uuid.UUID) (*domain.Trade, error) {
	panic("not expected")
}

func (r *sweepRecorder) DeclineTrade(ctx context.Context, userID string, tradeID uuid.UUID) (*domain.Trade, error) {
	panic("not expected")
}

func (r *sweepRecorder) CancelTrade(ctx context.Context, userID string, tradeID uuid.UUID) (*domain.Trade, error) {
	panic("not expected")
}

func (r *sweepRecorder) GetTrade(ctx context.Context, tradeID uuid.UUID) (*domain.Trade, error) {
	panic("not expected")
}

func (r *sweepRecorder) GetUserTrades(ctx context.Context, userID string, status domain.TradeStatus) ([]domain.Trade, error) {
	panic("not expected")
}

func proposedEvent(tradeID string, expiresAt time.Time) event.Event {
	return event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.Type(domain.EventTypeTradeProposed),
		Payload: domain.TradeProposedPayload{
			TradeID:   tradeID,
			ExpiresAt: expiresAt.Unix(),
			Timestamp: time.Now().Unix(),
		},
	}
}

func (w *TradeExpiryWorker) timerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}

func TestTradeExpiryWorker_StartSweepsImmediately(t *testing.T) {
	svc := newSweepRecorder()
	w := NewTradeExpiryWorker(svc, 50)

	w.Start()
	require.NoError(t, w.Shutdown(context.Background()))

	require.Equal(t, 1, svc.count())
	assert.Equal(t, 50, svc.limits[0])
}

func TestTradeExpiryWorker_OverdueProposalSweepsNow(t *testing.T) {
	svc := newSweepRecorder()
	w := NewTradeExpiryWorker(svc, 100)
	bus := event.NewMemoryBus()
	w.Subscribe(bus)

	err := bus.Publish(context.Background(), proposedEvent(uuid.NewString(), time.Now().Add(-time.Hour)))

	require.NoError(t, err)
	require.NoError(t, w.Shutdown(context.Background()))
	assert.Equal(t, 1, svc.count())
	assert.Zero(t, w.timerCount())
}

func TestTradeExpiryWorker_FutureProposalSchedulesTimer(t *testing.T) {
	svc := newSweepRecorder()
	w := NewTradeExpiryWorker(svc, 100)
	bus := event.NewMemoryBus()
	w.Subscribe(bus)

	err := bus.Publish(context.Background(), proposedEvent(uuid.NewString(), time.Now().Add(time.Hour)))

	require.NoError(t, err)
	assert.Equal(t, 1, w.timerCount())
	assert.Zero(t, svc.count())

	// Shutdown cancels the pending timer
	require.NoError(t, w.Shutdown(context.Background()))
	assert.Zero(t, w.timerCount())
	assert.Zero(t, svc.count())
}

func TestTradeExpiryWorker_TimerFiresAtDeadline(t *testing.T) {
	svc := newSweepRecorder()
	w := NewTradeExpiryWorker(svc, 100)
	bus := event.NewMemoryBus()
	w.Subscribe(bus)

	// Just shy of the grace window, so the timer fires a few ms out
	expiresAt := time.Now().Add(-expiryGrace + 50*time.Millisecond)
	require.NoError(t, bus.Publish(context.Background(), proposedEvent(uuid.NewString(), expiresAt)))

	select {
	case <-svc.sweeps:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	require.NoError(t, w.Shutdown(context.Background()))
	assert.Equal(t, 1, svc.count())
}

func TestTradeExpiryWorker_ReplacesTimerForSameTrade(t *testing.T) {
	svc := newSweepRecorder()
	w := NewTradeExpiryWorker(svc, 100)
	bus := event.NewMemoryBus()
	w.Subscribe(bus)

	tradeID := uuid.NewString()
	require.NoError(t, bus.Publish(context.Background(), proposedEvent(tradeID, time.Now().Add(time.Hour))))
	require.NoError(t, bus.Publish(context.Background(), proposedEvent(tradeID, time.Now().Add(2*time.Hour))))

	assert.Equal(t, 1, w.timerCount())
	require.NoError(t, w.Shutdown(context.Background()))
}

func TestTradeExpiryWorker_MalformedPayloadIgnored(t *testing.T) {
	svc := newSweepRecorder()
	w := NewTradeExpiryWorker(svc, 100)
	bus := event.NewMemoryBus()
	w.Subscribe(bus)

	err := bus.Publish(context.Background(), event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.Type(domain.EventTypeTradeProposed),
		Payload: domain.TradeProposedPayload{TradeID: "not-a-uuid", ExpiresAt: time.Now().Unix()},
	})

	require.NoError(t, err)
	require.NoError(t, w.Shutdown(context.Background()))
	assert.Zero(t, svc.count())
	assert.Zero(t, w.timerCount())
}

func TestTradeExpiryWorker_SweepErrorIsSwallowed(t *testing.T) {
	svc := newSweepRecorder()
	svc.err = errors.New("db unavailable")
	w := NewTradeExpiryWorker(svc, 100)

	w.Start()

	require.NoError(t, w.Shutdown(context.Background()))
	assert.Equal(t, 1, svc.count())
}

func TestTradeExpiryJob_Process(t *testing.T) {
	svc := newSweepRecorder()
	job := &TradeExpiryJob{Service: svc, Limit: 25}

	err := job.Process(context.Background())

	require.NoError(t, err)
	require.Equal(t, 1, svc.count())
	assert.Equal(t, 25, svc.limits[0])
}

func TestTradeExpiryJob_PropagatesError(t *testing.T) {
	svc := newSweepRecorder()
	svc.err = errors.New("db unavailable")
	job := &TradeExpiryJob{Service: svc, Limit: 25}

	err := job.Process(context.Background())

	assert.ErrorContains(t, err, "db unavailable")
}
