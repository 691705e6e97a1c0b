package catalog

// Cache sizes for the read path. The whole catalog comfortably fits; the
// bound exists to keep memory fixed if it ever doesn't.
const (
	ItemCacheSize     = 1024
	ContentsCacheSize = 256
)

// Error messages
const (
	ErrMsgBeginTransactionFailed  = "failed to begin transaction: %w"
	ErrMsgCommitTransactionFailed = "failed to commit transaction: %w"
	ErrMsgInsertItemFailed        = "failed to insert catalog item: %w"
	ErrMsgUpdateItemFailed        = "failed to update catalog item: %w"
	ErrMsgDeleteItemFailed        = "failed to delete catalog item: %w"
	ErrMsgReplaceContentsFailed   = "failed to replace case contents: %w"
	ErrMsgCheckReferencesFailed   = "failed to check case references: %w"
	ErrMsgCountInstancesFailed    = "failed to count item instances: %w"
)

// Log messages
const (
	LogMsgCreateItemCalled      = "CreateItem called"
	LogMsgItemCreated           = "Catalog item created"
	LogMsgUpdateItemCalled      = "UpdateItem called"
	LogMsgItemUpdated           = "Catalog item updated"
	LogMsgDeleteItemCalled      = "DeleteItem called"
	LogMsgItemDeleted           = "Catalog item deleted"
	LogMsgSetCaseContentsCalled = "SetCaseContents called"
	LogMsgCaseContentsSet       = "Case contents replaced"
)
