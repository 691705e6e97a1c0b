package domain

import (
	"time"

	"github.com/google/uuid"
)

// TradeStatus is the state of a trade in the negotiation state machine.
// PENDING is the only non-terminal state.
type TradeStatus string

const (
	TradePending   TradeStatus = "PENDING"
	TradeAccepted  TradeStatus = "ACCEPTED"
	TradeDeclined  TradeStatus = "DECLINED"
	TradeCancelled TradeStatus = "CANCELLED"
	TradeExpired   TradeStatus = "EXPIRED"
)

// Terminal reports whether the status admits no further transitions.
func (s TradeStatus) Terminal() bool {
	return s != TradePending
}

// TradeItem is one instance offered in a trade.
type TradeItem struct {
	TradeID    uuid.UUID `json:"trade_id"`
	InstanceID uuid.UUID `json:"instance_id"`
	OfferedBy  string    `json:"offered_by"`
}

// Trade is a two-party exchange proposal. While PENDING, every referenced
// instance is locked against other mutation until the trade resolves.
type Trade struct {
	ID          uuid.UUID   `json:"trade_id"`
	InitiatorID string      `json:"initiator_id"`
	ReceiverID  string      `json:"receiver_id"`
	Status      TradeStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Items       []TradeItem `json:"items,omitempty"`
}

// Expired reports whether a pending trade has passed its deadline.
func (t *Trade) Expired(now time.Time) bool {
	return t.Status == TradePending && now.After(t.ExpiresAt)
}
