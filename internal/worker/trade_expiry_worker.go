package worker

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/event"
	"github.com/quartzlab/tradepost/internal/logger"
	"github.com/quartzlab/tradepost/internal/trade"
)

// expiryGrace is added past the deadline so the sweep never races the clock on
// a trade that is not quite overdue yet.
const expiryGrace = time.Second

// TradeExpiryWorker expires pending trades at their deadline. It schedules a
// timer per proposed trade; the scheduler-driven periodic sweep remains the
// backstop for trades proposed before a restart.
type TradeExpiryWorker struct {
	BaseWorker
	service    trade.Service
	sweepLimit int
}

// NewTradeExpiryWorker creates a new TradeExpiryWorker
func NewTradeExpiryWorker(service trade.Service, sweepLimit int) *TradeExpiryWorker {
	w := &TradeExpiryWorker{
		service:    service,
		sweepLimit: sweepLimit,
	}
	w.init()
	return w
}

// Start runs one sweep immediately to catch trades that went overdue while
// the process was down.
func (w *TradeExpiryWorker) Start() {
	w.runSweep()
}

// Subscribe subscribes the worker to relevant events
func (w *TradeExpiryWorker) Subscribe(bus event.Bus) {
	bus.Subscribe(event.Type(domain.EventTypeTradeProposed), w.handleTradeProposed)
}

func (w *TradeExpiryWorker) handleTradeProposed(ctx context.Context, e event.Event) error {
	payload, err := event.DecodePayload[domain.TradeProposedPayload](e.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgBadProposedPayload, "error", err)
		return nil
	}
	tradeID, err := uuid.Parse(payload.TradeID)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgBadProposedPayload, "tradeID", payload.TradeID)
		return nil
	}
	w.scheduleExpiry(tradeID, time.Unix(payload.ExpiresAt, 0))
	return nil
}

func (w *TradeExpiryWorker) scheduleExpiry(tradeID uuid.UUID, expiresAt time.Time) {
	duration := time.Until(expiresAt) + expiryGrace

	log := logger.FromContext(context.Background())
	log.Info(LogMsgSchedulingTradeExpiry, "tradeID", tradeID, "duration", duration)

	if duration <= 0 {
		w.runSweep()
		return
	}

	// Replace any existing timer for this trade
	w.stopTimer(tradeID)

	timer := time.AfterFunc(duration, func() {
		select {
		case <-w.shutdown:
			return
		default:
		}

		w.runSweep()
		w.removeTimer(tradeID)
	})
	w.registerTimer(tradeID, timer)
}

// runSweep expires every overdue pending trade in a tracked goroutine.
func (w *TradeExpiryWorker) runSweep() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ctx := context.Background()
		log := logger.FromContext(ctx)
		log.Debug(LogMsgRunningExpirySweep)

		if _, err := w.service.ExpireTrades(ctx, w.sweepLimit); err != nil {
			log.Error(LogMsgExpirySweepFailed, "error", err)
		}
	}()
}

// Shutdown cancels pending timers and waits for in-flight sweeps.
func (w *TradeExpiryWorker) Shutdown(ctx context.Context) error {
	return w.shutdownInternal(ctx, "trade expiry worker")
}

// TradeExpiryJob is the periodic sweep enqueued by the scheduler.
type TradeExpiryJob struct {
	Service trade.Service
	Limit   int
}

// Process runs one expiry sweep.
func (j *TradeExpiryJob) Process(ctx context.Context) error {
	_, err := j.Service.ExpireTrades(ctx, j.Limit)
	return err
}
