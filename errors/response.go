package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GenericInternalMessage is the only message clients see for internal faults.
const GenericInternalMessage = "Internal Server Error"

// genericInternalDetail fills the "error" field of the internal body. The
// original error text stays in the logs.
const genericInternalDetail = "Something went wrong"

// NotFoundErrorName is the fixed errorName of the route-not-found body.
const NotFoundErrorName = "NotFoundError"

// ClassifiedResponse is the body for client, malformed-input and not-found errors.
type ClassifiedResponse struct {
	Message   string    `json:"message"`
	ErrorCode ErrorCode `json:"errorCode"`
}

// InternalResponse is the body for internal faults.
type InternalResponse struct {
	Message   string    `json:"message"`
	Error     string    `json:"error"`
	ErrorCode ErrorCode `json:"errorCode"`
}

// NewInternalResponse returns the generic internal body carrying code.
func NewInternalResponse(code ErrorCode) InternalResponse {
	if !compatible(KindInternalFault, code) {
		code = ErrCodeInternal
	}
	return InternalResponse{
		Message:   GenericInternalMessage,
		Error:     genericInternalDetail,
		ErrorCode: code,
	}
}

// NotFoundResponse is the body emitted when no route matched.
type NotFoundResponse struct {
	ErrorName  string    `json:"errorName"`
	ErrorCode  ErrorCode `json:"errorCode"`
	HTTPStatus int       `json:"httpStatus"`
	Message    string    `json:"message"`
	Timestamp  string    `json:"timestamp"`
	Path       string    `json:"path"`
}

// NewNotFoundResponse builds the route-not-found body. originalURL is echoed
// verbatim in both the message and the path field.
func NewNotFoundResponse(method, originalURL string, now time.Time) NotFoundResponse {
	return NotFoundResponse{
		ErrorName:  NotFoundErrorName,
		ErrorCode:  ErrCodeRouteNotFound,
		HTTPStatus: http.StatusNotFound,
		Message:    fmt.Sprintf("The requested endpoint %s %s was not found", method, originalURL),
		Timestamp:  now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Path:       originalURL,
	}
}

// internalFallback is written when a response body cannot be encoded.
var internalFallback = mustMarshal(NewInternalResponse(ErrCodeInternal))

// InternalFallbackBody returns the pre-encoded generic internal body.
func InternalFallbackBody() []byte {
	out := make([]byte, len(internalFallback))
	copy(out, internalFallback)
	return out
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("errors: encoding fallback body: %v", err))
	}
	return b
}
