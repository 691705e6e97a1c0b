package handler

import (
	"sync"

	"github.com/quartzlab/tradepost/internal/validation"
)

var (
	validatorOnce sync.Once
	requestVal    *validation.InputValidator
)

// GetValidator returns the shared request validator. Handlers validate decoded
// request structs with it before touching any service.
func GetValidator() *validation.InputValidator {
	validatorOnce.Do(func() {
		requestVal = validation.NewInputValidator()
	})
	return requestVal
}
