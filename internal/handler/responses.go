package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quartzlab/tradepost/internal/domain"
	"github.com/quartzlab/tradepost/internal/logger"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse represents a response with data payload
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// Helper functions for responding

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Get a buffer from the pool to reduce allocations
	buf := getBuffer()
	defer putBuffer(buf)

	// Encode to the buffer first
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		// Headers are already sent; all we can do is log
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError logs a failed service call and writes the mapped HTTP
// response for it.
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	log := logger.FromContext(r.Context())
	status, message := mapServiceErrorToUserMessage(err)
	if status >= http.StatusInternalServerError {
		log.Error("Operation failed", "operation", opName, "error", err)
	} else {
		log.Warn("Operation rejected", "operation", opName, "error", err)
	}
	respondError(w, status, message)
}

// User-facing error messages for service errors
const (
	// Generic messages
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgBusyError           = "Server is busy. Please try again."
	ErrMsgInvalidInputError   = "Invalid request. Please check your inputs."
	ErrMsgResourceNotFoundErr = "Resource not found."

	// Catalog and inventory messages
	ErrMsgItemNotFoundError     = "Item not found"
	ErrMsgInstanceNotFoundError = "Item instance not found"
	ErrMsgItemNotOwnedError     = "You don't own that item"
	ErrMsgItemLockedError       = "Item is locked by a pending trade"
	ErrMsgItemEquippedError     = "Item is equipped"
	ErrMsgItemReferencedError   = "Item is still referenced by case contents"
	ErrMsgItemHasInstancesError = "Item still has owned copies"

	// Economy messages
	ErrMsgWalletNotFoundError      = "Wallet not found"
	ErrMsgInsufficientCreditsError = "Not enough credits"
	ErrMsgNotPurchasableError      = "Item is not purchasable"
	ErrMsgRoleRequiredError        = "A required role is missing"

	// Lootbox messages
	ErrMsgCaseNotOwnedError        = "You don't own that case"
	ErrMsgInvalidCaseContentsError = "Case contents are misconfigured"

	// Trade messages
	ErrMsgTradeNotFoundError      = "Trade not found"
	ErrMsgTradeNotActionableError = "Trade can no longer be actioned"
	ErrMsgTradeSelfError          = "You cannot trade with yourself"

	// Equip messages
	ErrMsgNotEquippableError = "Item cannot be equipped"
	ErrMsgBadgeLimitError    = "Badge limit reached"
	ErrMsgNotDurableError    = "Item has no durability"
	ErrMsgRepairLimitError   = "Item cannot be repaired any further"
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP
// responses. Internal error details never reach the client.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound, ErrMsgItemNotFoundError
	case errors.Is(err, domain.ErrInstanceNotFound):
		return http.StatusNotFound, ErrMsgInstanceNotFoundError
	case errors.Is(err, domain.ErrTradeNotFound):
		return http.StatusNotFound, ErrMsgTradeNotFoundError
	case errors.Is(err, domain.ErrWalletNotFound):
		return http.StatusNotFound, ErrMsgWalletNotFoundError
	case errors.Is(err, domain.ErrItemNotOwned):
		return http.StatusForbidden, ErrMsgItemNotOwnedError
	case errors.Is(err, domain.ErrRoleRequired):
		return http.StatusForbidden, ErrMsgRoleRequiredError
	case errors.Is(err, domain.ErrItemLocked):
		return http.StatusConflict, ErrMsgItemLockedError
	case errors.Is(err, domain.ErrItemEquipped):
		return http.StatusConflict, ErrMsgItemEquippedError
	case errors.Is(err, domain.ErrItemReferencedInCases):
		return http.StatusConflict, ErrMsgItemReferencedError
	case errors.Is(err, domain.ErrItemHasInstances):
		return http.StatusConflict, ErrMsgItemHasInstancesError
	case errors.Is(err, domain.ErrTradeNotActionable):
		return http.StatusConflict, ErrMsgTradeNotActionableError
	case errors.Is(err, domain.ErrBadgeLimitExceeded):
		return http.StatusConflict, ErrMsgBadgeLimitError
	case errors.Is(err, domain.ErrRepairLimitExceeded):
		return http.StatusConflict, ErrMsgRepairLimitError
	case errors.Is(err, domain.ErrInsufficientCredits):
		return http.StatusBadRequest, ErrMsgInsufficientCreditsError
	case errors.Is(err, domain.ErrItemNotPurchasable):
		return http.StatusBadRequest, ErrMsgNotPurchasableError
	case errors.Is(err, domain.ErrCaseNotOwned):
		return http.StatusForbidden, ErrMsgCaseNotOwnedError
	case errors.Is(err, domain.ErrInvalidCaseContents):
		return http.StatusUnprocessableEntity, ErrMsgInvalidCaseContentsError
	case errors.Is(err, domain.ErrTradeSelf):
		return http.StatusBadRequest, ErrMsgTradeSelfError
	case errors.Is(err, domain.ErrNotEquippable):
		return http.StatusBadRequest, ErrMsgNotEquippableError
	case errors.Is(err, domain.ErrNotDurable):
		return http.StatusBadRequest, ErrMsgNotDurableError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidInputError
	case errors.Is(err, domain.ErrLockTimeout):
		return http.StatusServiceUnavailable, ErrMsgBusyError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
