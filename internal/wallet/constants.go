package wallet

// Error messages
const (
	ErrMsgBeginTransactionFailed  = "failed to begin transaction: %w"
	ErrMsgCommitTransactionFailed = "failed to commit transaction: %w"
	ErrMsgGetWalletFailed         = "failed to get wallet: %w"
	ErrMsgUpdateWalletFailed      = "failed to update wallet: %w"
)

// Log messages
const (
	LogMsgGetBalanceCalled = "GetBalance called"
	LogMsgGrantCalled      = "Grant called"
	LogMsgCreditsGranted   = "Credits granted"
)
