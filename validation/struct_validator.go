package validation

import (
	stderrors "errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/faultline/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Field names in messages follow the JSON payload, not the Go struct.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
	})
	return validate
}

// Validate checks s against its `validate` struct tags. A failure is a 400
// client error with code ERR_VALIDATION whose message lists every offending
// field, e.g. "email: must be a valid email address; name: is required".
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	if _, ok := asValidationErrors(err); !ok {
		return errors.Validation("validation failed")
	}
	return FromError(err)
}

// FromError turns validator failures, including the ones gin's binding
// reports for `binding` tags, into an ERR_VALIDATION client error. Any
// other error is returned unchanged.
func FromError(err error) error {
	validationErrors, ok := asValidationErrors(err)
	if !ok {
		return err
	}
	v := New()
	for _, e := range validationErrors {
		v.AddError(fieldName(e), formatValidationError(e))
	}
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return err
}

func asValidationErrors(err error) (validator.ValidationErrors, bool) {
	var validationErrors validator.ValidationErrors
	if err == nil || !stderrors.As(err, &validationErrors) {
		return nil, false
	}
	return validationErrors, true
}

// fieldName keeps JSON names from our validator and converts the Go field
// names gin's validator reports.
func fieldName(e validator.FieldError) string {
	name := e.Field()
	if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
		return toSnakeCase(name)
	}
	return name
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
