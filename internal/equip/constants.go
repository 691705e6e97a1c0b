package equip

import (
	"errors"

	"github.com/quartzlab/tradepost/internal/domain"
)

// Error messages
const (
	ErrMsgBeginTransactionFailed  = "failed to begin transaction: %w"
	ErrMsgCommitTransactionFailed = "failed to commit transaction: %w"
	ErrMsgGetEquippedFailed       = "failed to get equipped instances: %w"
	ErrMsgGetInstancesFailed      = "failed to get instances: %w"
	ErrMsgUpdateInstanceFailed    = "failed to update instance: %w"
	ErrMsgCheckLocksFailed        = "failed to check trade locks: %w"
)

// Log messages
const (
	LogMsgEquipCalled           = "Equip called"
	LogMsgItemEquipped          = "Item equipped"
	LogMsgUnequipCalled         = "Unequip called"
	LogMsgItemUnequipped        = "Item unequipped"
	LogMsgBatchEquipCalled      = "BatchEquip called"
	LogMsgBatchUnequipCalled    = "BatchUnequip called"
	LogMsgUnequipCategoryCalled = "UnequipCategory called"
	LogMsgAttachRodPartCalled   = "AttachRodPart called"
	LogMsgRodPartAttached       = "Rod part attached"
	LogMsgDetachRodPartCalled   = "DetachRodPart called"
	LogMsgRodPartDetached       = "Rod part detached"
)

func errorsIsNotFound(err error) bool {
	return errors.Is(err, domain.ErrInstanceNotFound)
}
