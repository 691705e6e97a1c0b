package economy

// Error messages
const (
	ErrMsgBeginTransactionFailed  = "failed to begin transaction: %w"
	ErrMsgCommitTransactionFailed = "failed to commit transaction: %w"
)

// Log messages
const (
	LogMsgPurchaseItemCalled = "PurchaseItem called"
	LogMsgItemPurchased      = "Item purchased"
)
