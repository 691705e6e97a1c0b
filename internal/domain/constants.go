package domain

import "time"

// Operational limits shared across services
const (
	// MaxTradeItems bounds how many instances one trade may carry.
	MaxTradeItems = 10

	// DefaultTradeTTL is the lifetime of a pending trade when the proposer
	// does not specify one.
	DefaultTradeTTL = 24 * time.Hour

	// MaxTradeTTL bounds caller-supplied trade lifetimes.
	MaxTradeTTL = 7 * 24 * time.Hour

	// DefaultBadgeLimit is the number of badges a user may have equipped at once.
	DefaultBadgeLimit = 1

	// MaxBatchEquipSize bounds batch equip/unequip requests.
	MaxBatchEquipSize = 20
)
