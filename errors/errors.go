package errors

import (
	"fmt"
	"net/http"
)

// AppError is the classified application error. Its fields are fixed at
// construction; values are only built through the constructors below so the
// status and code always agree with the kind.
type AppError struct {
	kind    Kind
	message string
	status  int
	code    ErrorCode
	cause   error
	stack   string
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.cause }

// Kind returns the failure category.
func (e *AppError) Kind() Kind { return e.kind }

// Message returns the human-readable message.
func (e *AppError) Message() string { return e.message }

// StatusCode returns the HTTP status for the error.
func (e *AppError) StatusCode() int { return e.status }

// Code returns the machine-readable error code.
func (e *AppError) Code() ErrorCode { return e.code }

// Cause returns the wrapped error, if any.
func (e *AppError) Cause() error { return e.cause }

// Stack returns the call stack captured when the error was constructed.
func (e *AppError) Stack() string { return e.stack }

// newAppError keeps status and code as a pair: a code outside the kind's
// family resets both to the kind's defaults, and a status the code may not
// carry is replaced by the code's own.
func newAppError(kind Kind, status int, code ErrorCode, message string, cause error) *AppError {
	if compatible(kind, code) {
		status = knownCodes[code].status(status)
		if !kind.accepts(status) {
			status = kind.defaultStatus()
		}
	} else {
		status, code = kind.defaultStatus(), kind.defaultCode()
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{
		kind:    kind,
		message: message,
		status:  status,
		code:    code,
		cause:   cause,
		stack:   callers(3),
	}
}

func compatible(kind Kind, code ErrorCode) bool {
	spec, ok := knownCodes[code]
	if !ok {
		return false
	}
	if kind == KindMalformedInput {
		return spec.kind == KindClientError
	}
	return spec.kind == kind
}

// --- Taxonomy constructors ---

// ClientError creates a caller-caused error whose message is safe to echo.
// ERR_NOT_FOUND and USR_404 produce a NotFound error. A status the code may
// not carry becomes the code's status; a code outside the client families
// turns the pair into 400 / ERR_BAD_REQUEST.
func ClientError(status int, code ErrorCode, message string) *AppError {
	kind := KindClientError
	if spec, ok := knownCodes[code]; ok && spec.kind == KindNotFound {
		kind = KindNotFound
	}
	return newAppError(kind, status, code, message, nil)
}

// BadRequest creates a 400 client error.
func BadRequest(message string) *AppError {
	return newAppError(KindClientError, http.StatusBadRequest, ErrCodeBadRequest, message, nil)
}

// Unauthorized creates a 401 client error.
func Unauthorized(message string) *AppError {
	if message == "" {
		message = "Authentication required"
	}
	return newAppError(KindClientError, http.StatusUnauthorized, ErrCodeUnauthorized, message, nil)
}

// Forbidden creates a 403 client error.
func Forbidden(message string) *AppError {
	if message == "" {
		message = "You don't have permission to perform this action"
	}
	return newAppError(KindClientError, http.StatusForbidden, ErrCodeForbidden, message, nil)
}

// Conflict creates a 409 client error.
func Conflict(message string) *AppError {
	return newAppError(KindClientError, http.StatusConflict, ErrCodeConflict, message, nil)
}

// Validation creates a 400 client error for payloads that parsed but failed
// field validation.
func Validation(message string) *AppError {
	return newAppError(KindClientError, http.StatusBadRequest, ErrCodeValidation, message, nil)
}

// PayloadTooLarge creates a 413 client error.
func PayloadTooLarge(limit int64) *AppError {
	return newAppError(KindClientError, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge,
		fmt.Sprintf("Request body exceeds the %d byte limit", limit), nil)
}

// MalformedInput creates a 400 error for a payload that could not be parsed.
// The parser's message is used as the client-visible message.
func MalformedInput(cause error) *AppError {
	msg := "Malformed request body"
	if cause != nil {
		msg = cause.Error()
	}
	return newAppError(KindMalformedInput, http.StatusBadRequest, ErrCodeBadRequest, msg, cause)
}

// NotFound creates a 404 error for a missing resource.
func NotFound(resource string) *AppError {
	return newAppError(KindNotFound, http.StatusNotFound, ErrCodeNotFound,
		fmt.Sprintf("The requested %s was not found", resource), nil)
}

// Internal creates a 500 error. The cause is kept for logging only.
func Internal(cause error) *AppError {
	return newAppError(KindInternalFault, http.StatusInternalServerError, ErrCodeInternal,
		GenericInternalMessage, cause)
}

// Database creates a 500 error for persistence failures.
func Database(cause error) *AppError {
	return newAppError(KindInternalFault, http.StatusInternalServerError, ErrCodeDatabase,
		"A database error occurred", cause)
}
