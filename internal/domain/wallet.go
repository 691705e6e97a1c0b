package domain

import "time"

// Wallet is a user's credit balance. Balances are mutated only through the
// wallet ledger inside an enclosing transaction and never go negative.
type Wallet struct {
	UserID    string    `json:"user_id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}
