package metrics

import (
	"context"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/event"
	"github.com/quartzlab/tradepost/internal/logger"
)

// EventMetricsCollector subscribes to economy events and counts them.
// Business counters are recorded at the service layer; this collector only
// tracks event-bus traffic.
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all published event types
func (e *EventMetricsCollector) Register(bus event.Bus) {
	eventTypes := []event.Type{
		event.Type(domain.EventTypeItemPurchased),
		event.Type(domain.EventTypeCaseOpened),
		event.Type(domain.EventTypeTradeProposed),
		event.Type(domain.EventTypeTradeAccepted),
		event.Type(domain.EventTypeTradeExpired),
		event.Type(domain.EventTypeItemRepaired),
	}
	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}
}

// HandleEvent counts the event by type
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()
	logger.FromContext(ctx).Debug("Metrics recorded for event", "type", evt.Type)
	return nil
}
