package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/elvificent/supportdesk/pkg/util"
)

var validate = validator.New()

// Validate checks struct tags and converts failures into a domain validation
// error with per-field details.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	details := map[string]any{}
	if ok := errorsAs(err, &fieldErrs); ok {
		for _, fe := range fieldErrs {
			details[strings.ToLower(fe.Field())] = fe.Tag()
		}
	}
	return apperrors.NewValidationError("request validation failed", details)
}

func errorsAs(err error, target *validator.ValidationErrors) bool {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = fieldErrs
	}
	return ok
}
