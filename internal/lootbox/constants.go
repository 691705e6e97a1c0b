package lootbox

import "github.com/quartzlab/tradepost/internal/domain"

// Duplicate compensation scales with the rarity of the duplicated win.
var compensationCredits = map[domain.Rarity]int64{
	domain.RarityCommon:    25,
	domain.RarityUncommon:  75,
	domain.RarityRare:      200,
	domain.RarityEpic:      500,
	domain.RarityLegendary: 1500,
}

var compensationXP = map[domain.Rarity]int{
	domain.RarityCommon:    50,
	domain.RarityUncommon:  125,
	domain.RarityRare:      300,
	domain.RarityEpic:      750,
	domain.RarityLegendary: 2000,
}

// CompensationCredits returns the credit award for a duplicated win of the
// given rarity. Unknown rarities pay out as common.
func CompensationCredits(r domain.Rarity) int64 {
	if c, ok := compensationCredits[r]; ok {
		return c
	}
	return compensationCredits[domain.RarityCommon]
}

// CompensationXP returns the rod XP award for a duplicated win of the given
// rarity. Unknown rarities pay out as common.
func CompensationXP(r domain.Rarity) int {
	if xp, ok := compensationXP[r]; ok {
		return xp
	}
	return compensationXP[domain.RarityCommon]
}

// Error messages
const (
	ErrMsgBeginTransactionFailed  = "failed to begin transaction: %w"
	ErrMsgCommitTransactionFailed = "failed to commit transaction: %w"
	ErrMsgGetContentsFailed       = "failed to get case contents: %w"
	ErrMsgCheckLocksFailed        = "failed to check trade locks: %w"
	ErrMsgUpdateCaseFailed        = "failed to consume case instance: %w"
	ErrMsgUpdateInstanceFailed    = "failed to update instance: %w"
)

// Log messages
const (
	LogMsgOpenCaseCalled = "OpenCase called"
	LogMsgCaseOpened     = "Case opened"
)
