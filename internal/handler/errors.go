package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidUUIDParam  = "Invalid %s parameter"
	ErrMsgInvalidItemID     = "Invalid item ID"
	ErrMsgInvalidStatus     = "Invalid status filter"

	// Catalog operation error messages
	ErrMsgGetItemFailed         = "Failed to get item"
	ErrMsgListItemsFailed       = "Failed to list items"
	ErrMsgGetCaseContentsFailed = "Failed to get case contents"

	// Inventory operation error messages
	ErrMsgGetInventoryFailed = "Failed to get inventory"
	ErrMsgGetInstanceFailed  = "Failed to get item instance"

	// Wallet operation error messages
	ErrMsgGetBalanceFailed = "Failed to get balance"

	// Trade operation error messages
	ErrMsgGetTradeFailed   = "Failed to get trade"
	ErrMsgListTradesFailed = "Failed to list trades"

	// Equip operation error messages
	ErrMsgGetEquippedFailed = "Failed to get equipped items"
)

// Success messages for API responses
const (
	MsgItemDeletedSuccess     = "Item deleted successfully"
	MsgCaseContentsSetSuccess = "Case contents updated successfully"
	MsgCaseContentsValid      = "Case contents are valid"
)
