package blogtracker

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// validate is shared across the package; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// checkRequest runs struct validation on a request DTO and converts any
// failures into a *ValidationError keyed by field name. It is pure and never
// touches the store.
func checkRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: a non-struct was passed, which is a
		// programming error rather than bad input.
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validationMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "http_url":
		return "must be a valid http or https URL"
	case "min":
		return "is too short (minimum " + fe.Param() + ")"
	case "max":
		return "is too long (maximum " + fe.Param() + ")"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
