package domain

// Event type names published by the economy engine. Consumers subscribe to
// these on the in-process bus.
const (
	EventTypeItemPurchased = "item.purchased"
	EventTypeCaseOpened    = "case.opened"
	EventTypeTradeProposed = "trade.proposed"
	EventTypeTradeAccepted = "trade.accepted"
	EventTypeTradeExpired  = "trade.expired"
	EventTypeItemRepaired  = "item.repaired"
)

// ItemPurchasedPayload is published after a purchase commits.
type ItemPurchasedPayload struct {
	UserID     string `json:"user_id"`
	ItemID     int    `json:"item_id"`
	ItemName   string `json:"item_name"`
	Price      int    `json:"price"`
	InstanceID string `json:"instance_id"`
	Timestamp  int64  `json:"timestamp"`
}

// CaseOpenedPayload is published after a case resolution commits.
type CaseOpenedPayload struct {
	UserID              string `json:"user_id"`
	CaseItemID          int    `json:"case_item_id"`
	WonItemID           int    `json:"won_item_id"`
	AlreadyOwned        bool   `json:"already_owned"`
	CompensationCredits int64  `json:"compensation_credits,omitempty"`
	Timestamp           int64  `json:"timestamp"`
}

// TradeProposedPayload is published after a trade proposal commits. The expiry
// worker uses it to schedule an eager sweep at the trade's deadline.
type TradeProposedPayload struct {
	TradeID     string `json:"trade_id"`
	InitiatorID string `json:"initiator_id"`
	ReceiverID  string `json:"receiver_id"`
	ItemCount   int    `json:"item_count"`
	ExpiresAt   int64  `json:"expires_at"`
	Timestamp   int64  `json:"timestamp"`
}

// TradeSettledPayload is published when a trade reaches a terminal state.
type TradeSettledPayload struct {
	TradeID     string `json:"trade_id"`
	InitiatorID string `json:"initiator_id"`
	ReceiverID  string `json:"receiver_id"`
	Status      string `json:"status"`
	ItemCount   int    `json:"item_count"`
	Timestamp   int64  `json:"timestamp"`
}

// ItemRepairedPayload is published after a successful repair.
type ItemRepairedPayload struct {
	UserID      string `json:"user_id"`
	InstanceID  string `json:"instance_id"`
	RepairCount int    `json:"repair_count"`
	Timestamp   int64  `json:"timestamp"`
}
