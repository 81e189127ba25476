package errors

import "net/http"

// ErrorCode represents a machine-readable error code. Clients branch on it
// instead of parsing the human-readable message.
type ErrorCode string

// Client errors
const (
	// ErrCodeBadRequest indicates a request the server could not process.
	ErrCodeBadRequest ErrorCode = "ERR_BAD_REQUEST"
	// ErrCodeUnauthorized indicates missing or invalid credentials.
	ErrCodeUnauthorized ErrorCode = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden indicates the caller may not perform the action.
	ErrCodeForbidden ErrorCode = "ERR_FORBIDDEN"
	// ErrCodeConflict indicates a conflict with the current resource state.
	ErrCodeConflict ErrorCode = "ERR_CONFLICT"
	// ErrCodeValidation indicates the payload failed field validation.
	ErrCodeValidation ErrorCode = "ERR_VALIDATION"
	// ErrCodePayloadTooLarge indicates the request body exceeded the limit.
	ErrCodePayloadTooLarge ErrorCode = "ERR_PAYLOAD_TOO_LARGE"
	// ErrCodeTooManyRequests indicates the caller is being throttled upstream.
	ErrCodeTooManyRequests ErrorCode = "ERR_TOO_MANY_REQUESTS"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource does not exist.
	ErrCodeNotFound ErrorCode = "ERR_NOT_FOUND"
	// ErrCodeRouteNotFound is reported when no route matched the request.
	ErrCodeRouteNotFound ErrorCode = "USR_404"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "ERR_INTERNAL"
	// ErrCodeDatabase indicates a persistence failure.
	ErrCodeDatabase ErrorCode = "ERR_DATABASE"
)

// codeSpec ties a code to its kind and the statuses it may be sent with.
// The first status is the default; an empty list accepts any status of the
// kind.
type codeSpec struct {
	kind     Kind
	statuses []int
}

var knownCodes = map[ErrorCode]codeSpec{
	ErrCodeBadRequest:      {KindClientError, nil},
	ErrCodeUnauthorized:    {KindClientError, []int{http.StatusUnauthorized}},
	ErrCodeForbidden:       {KindClientError, []int{http.StatusForbidden}},
	ErrCodeConflict:        {KindClientError, []int{http.StatusConflict}},
	ErrCodeValidation:      {KindClientError, []int{http.StatusBadRequest, http.StatusUnprocessableEntity}},
	ErrCodePayloadTooLarge: {KindClientError, []int{http.StatusRequestEntityTooLarge}},
	ErrCodeTooManyRequests: {KindClientError, []int{http.StatusTooManyRequests}},
	ErrCodeNotFound:        {KindNotFound, []int{http.StatusNotFound}},
	ErrCodeRouteNotFound:   {KindNotFound, []int{http.StatusNotFound}},
	ErrCodeInternal:        {KindInternalFault, nil},
	ErrCodeDatabase:        {KindInternalFault, []int{http.StatusInternalServerError, http.StatusServiceUnavailable}},
}

// status returns the status to send for the code given the requested one.
func (c codeSpec) status(requested int) int {
	if len(c.statuses) == 0 {
		if c.kind.accepts(requested) {
			return requested
		}
		return c.kind.defaultStatus()
	}
	for _, st := range c.statuses {
		if st == requested {
			return st
		}
	}
	return c.statuses[0]
}

// Valid reports whether the code is a member of the taxonomy.
func (c ErrorCode) Valid() bool {
	_, ok := knownCodes[c]
	return ok
}

// String returns the code as sent to clients.
func (c ErrorCode) String() string { return string(c) }
