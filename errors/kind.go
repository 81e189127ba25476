package errors

import "net/http"

// Kind is the closed set of failure categories an AppError can belong to.
// Every kind fixes the status range it may use and whether its message is
// safe to send back to the caller.
type Kind uint8

const (
	// KindInternalFault is the zero value so an unclassified error can never
	// accidentally be treated as safe to echo.
	KindInternalFault Kind = iota
	// KindClientError covers 4xx failures caused by the caller.
	KindClientError
	// KindMalformedInput covers payload parsing failures.
	KindMalformedInput
	// KindNotFound covers missing resources.
	KindNotFound
)

// String returns the kind's name as used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindClientError:
		return "client_error"
	case KindMalformedInput:
		return "malformed_input"
	case KindNotFound:
		return "not_found"
	case KindInternalFault:
		return "internal_fault"
	default:
		return "unknown"
	}
}

// Exposable reports whether the error message may be sent to the caller.
func (k Kind) Exposable() bool {
	return k != KindInternalFault
}

func (k Kind) defaultStatus() int {
	switch k {
	case KindClientError, KindMalformedInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) defaultCode() ErrorCode {
	switch k {
	case KindClientError, KindMalformedInput:
		return ErrCodeBadRequest
	case KindNotFound:
		return ErrCodeNotFound
	default:
		return ErrCodeInternal
	}
}

// accepts reports whether status is a legal status for the kind.
func (k Kind) accepts(status int) bool {
	switch k {
	case KindClientError:
		return status >= 400 && status < 500
	case KindMalformedInput:
		return status == http.StatusBadRequest
	case KindNotFound:
		return status == http.StatusNotFound
	default:
		return status >= 500 && status < 600
	}
}
