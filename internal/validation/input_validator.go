package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// itemNamePattern restricts catalog item names to printable word characters,
// spaces and a few separators. Frontends render names verbatim.
var itemNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 '_.-]*$`)

// InputValidator validates API input structs via `validate` struct tags.
type InputValidator struct {
	validate *validator.Validate
}

// NewInputValidator creates a validator with the custom rules registered.
func NewInputValidator() *InputValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// item_name: charset check on top of the usual min/max tags
	_ = v.RegisterValidation("item_name", func(fl validator.FieldLevel) bool {
		return itemNamePattern.MatchString(fl.Field().String())
	})

	return &InputValidator{validate: v}
}

// Validate checks the struct and flattens tag failures into one readable error.
func (v *InputValidator) Validate(input any) error {
	err := v.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	case "item_name":
		return fmt.Sprintf("%s contains invalid characters", fe.Field())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
