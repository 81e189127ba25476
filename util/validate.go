package util

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NormalizeRequestID accepts a client-supplied request ID only when it is a
// UUID, returning it in canonical lowercase form.
func NormalizeRequestID(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// ValidateNonEmpty validates that value is not empty after trimming whitespace.
func ValidateNonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	return nil
}
