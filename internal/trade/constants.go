package trade

// ExpireSweepLimit bounds how many overdue trades one sweep settles.
const ExpireSweepLimit = 100

// Error messages
const (
	ErrMsgBeginTransactionFailed  = "failed to begin transaction: %w"
	ErrMsgCommitTransactionFailed = "failed to commit transaction: %w"
	ErrMsgInsertTradeFailed       = "failed to insert trade: %w"
	ErrMsgUpdateStatusFailed      = "failed to update trade status: %w"
	ErrMsgCheckLocksFailed        = "failed to check trade locks: %w"
	ErrMsgListExpiredFailed       = "failed to list expired trades: %w"
)

// Log messages
const (
	LogMsgProposeTradeCalled = "ProposeTrade called"
	LogMsgTradeProposed      = "Trade proposed"
	LogMsgAcceptTradeCalled  = "AcceptTrade called"
	LogMsgTradeAccepted      = "Trade accepted"
	LogMsgDeclineTradeCalled = "DeclineTrade called"
	LogMsgCancelTradeCalled  = "CancelTrade called"
	LogMsgTradeClosed        = "Trade closed"
	LogMsgTradesExpired      = "Expired pending trades"
	LogMsgExpireTradeFailed  = "Failed to expire trade"
)
