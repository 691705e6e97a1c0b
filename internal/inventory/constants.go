package inventory

// Error messages
const (
	ErrMsgBeginTransactionFailed  = "failed to begin transaction: %w"
	ErrMsgCommitTransactionFailed = "failed to commit transaction: %w"
	ErrMsgGetInstancesFailed      = "failed to get instances: %w"
	ErrMsgGetCatalogFailed        = "failed to get catalog: %w"
	ErrMsgInsertInstanceFailed    = "failed to insert instance: %w"
	ErrMsgUpdateInstanceFailed    = "failed to update instance: %w"
	ErrMsgCheckLocksFailed        = "failed to check trade locks: %w"
)

// Log messages
const (
	LogMsgGetInventoryCalled     = "GetInventory called"
	LogMsgCreateInstanceCalled   = "CreateInstance called"
	LogMsgInstanceCreated        = "Item instance created"
	LogMsgAddExperienceCalled    = "AddExperience called"
	LogMsgExperienceAdded        = "Experience added"
	LogMsgMutateDurabilityCalled = "MutateDurability called"
	LogMsgDurabilityMutated      = "Durability mutated"
	LogMsgRepairInstanceCalled   = "RepairInstance called"
	LogMsgInstanceRepaired       = "Item instance repaired"
	LogMsgOrphanedInstance       = "Instance references missing catalog item"
)
