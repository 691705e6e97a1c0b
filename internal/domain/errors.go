package domain

import (
	"errors"
	"fmt"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Not-found errors
	ErrMsgItemNotFound     = "catalog item not found"
	ErrMsgInstanceNotFound = "item instance not found"
	ErrMsgTradeNotFound    = "trade not found"
	ErrMsgWalletNotFound   = "wallet not found"

	// Ownership/conflict errors
	ErrMsgItemNotOwned          = "item not owned"
	ErrMsgItemLocked            = "item is locked by a pending trade"
	ErrMsgItemEquipped          = "item is equipped"
	ErrMsgItemReferencedInCases = "item is referenced by case contents"
	ErrMsgItemHasInstances      = "item has live instances"

	// Economic errors
	ErrMsgInsufficientCredits = "insufficient credits"
	ErrMsgCaseNotOwned        = "case not owned"
	ErrMsgItemNotPurchasable  = "item is not purchasable"
	ErrMsgRoleRequired        = "required role is missing"

	// Integrity errors
	ErrMsgInvalidCaseContents = "invalid case contents"

	// State errors
	ErrMsgTradeNotActionable = "trade is not actionable"
	ErrMsgTradeSelf          = "cannot trade with yourself"

	// Limit errors
	ErrMsgRepairLimitExceeded = "repair limit exceeded"
	ErrMsgBadgeLimitExceeded  = "badge limit exceeded"
	ErrMsgNotDurable          = "item is not durable"
	ErrMsgNotEquippable       = "item is not equippable"

	// Validation errors
	ErrMsgInvalidInput = "invalid input"

	// Transient errors
	ErrMsgLockTimeout = "lock acquisition timed out"

	// Database/System errors
	ErrMsgTxClosed = "tx is closed"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Not-found errors
	ErrItemNotFound     = errors.New(ErrMsgItemNotFound)
	ErrInstanceNotFound = errors.New(ErrMsgInstanceNotFound)
	ErrTradeNotFound    = errors.New(ErrMsgTradeNotFound)
	ErrWalletNotFound   = errors.New(ErrMsgWalletNotFound)

	// Ownership/conflict errors
	ErrItemNotOwned          = errors.New(ErrMsgItemNotOwned)
	ErrItemLocked            = errors.New(ErrMsgItemLocked)
	ErrItemEquipped          = errors.New(ErrMsgItemEquipped)
	ErrItemReferencedInCases = errors.New(ErrMsgItemReferencedInCases)
	ErrItemHasInstances      = errors.New(ErrMsgItemHasInstances)

	// Economic errors
	ErrInsufficientCredits = errors.New(ErrMsgInsufficientCredits)
	ErrCaseNotOwned        = errors.New(ErrMsgCaseNotOwned)
	ErrItemNotPurchasable  = errors.New(ErrMsgItemNotPurchasable)
	ErrRoleRequired        = errors.New(ErrMsgRoleRequired)

	// Integrity errors
	ErrInvalidCaseContents = errors.New(ErrMsgInvalidCaseContents)

	// State errors
	ErrTradeNotActionable = errors.New(ErrMsgTradeNotActionable)
	ErrTradeSelf          = errors.New(ErrMsgTradeSelf)

	// Limit errors
	ErrRepairLimitExceeded = errors.New(ErrMsgRepairLimitExceeded)
	ErrBadgeLimitExceeded  = errors.New(ErrMsgBadgeLimitExceeded)
	ErrNotDurable          = errors.New(ErrMsgNotDurable)
	ErrNotEquippable       = errors.New(ErrMsgNotEquippable)

	// Validation errors
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)

	// Transient errors
	ErrLockTimeout = errors.New(ErrMsgLockTimeout)
)

// CaseReferenceError reports the cases still referencing an item that an admin
// tried to delete, so the caller can render a specific message.
type CaseReferenceError struct {
	ItemID  int
	CaseIDs []int
}

func (e *CaseReferenceError) Error() string {
	return fmt.Sprintf("%s: item %d referenced by cases %v", ErrMsgItemReferencedInCases, e.ItemID, e.CaseIDs)
}

func (e *CaseReferenceError) Unwrap() error {
	return ErrItemReferencedInCases
}

// CaseContentsError carries the reason a case's loot table failed validation.
type CaseContentsError struct {
	CaseItemID int
	Reason     string
}

func (e *CaseContentsError) Error() string {
	return fmt.Sprintf("%s: case %d: %s", ErrMsgInvalidCaseContents, e.CaseItemID, e.Reason)
}

func (e *CaseContentsError) Unwrap() error {
	return ErrInvalidCaseContents
}
