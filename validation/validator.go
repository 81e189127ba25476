package validation

import (
	"strings"

	"github.com/kbukum/faultline/errors"
)

// Validator collects field errors and reports them as one client error.
type Validator struct {
	errors []FieldError
}

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns nil when every check passed, otherwise a client error
// with code ERR_VALIDATION whose message joins the field errors in order.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = e.String()
	}
	return errors.Validation(strings.Join(messages, "; "))
}
