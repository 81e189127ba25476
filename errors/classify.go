package errors

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
)

// Resolution is the outcome of classifying an arbitrary error: the kind it
// belongs to, the status to respond with, and the code/message the caller
// will see.
type Resolution struct {
	Kind    Kind
	Status  int
	Code    ErrorCode
	Message string
	// Err is the classified error; for unclassified input it is an Internal
	// AppError wrapping the original.
	Err *AppError
}

// Classify maps any error onto the taxonomy. First match wins:
// an AppError keeps its own fields, a payload-parsing failure becomes
// MalformedInput, everything else becomes InternalFault.
func Classify(err error) Resolution {
	appErr := Wrap(err)
	if appErr == nil {
		appErr = Internal(stderrors.New("nil error dispatched"))
	}
	return Resolution{
		Kind:    appErr.kind,
		Status:  appErr.status,
		Code:    appErr.code,
		Message: appErr.message,
		Err:     appErr,
	}
}

// Body returns the client-facing JSON payload for the resolution. Internal
// faults always get the generic body regardless of the recorded message.
func (r Resolution) Body() any {
	switch r.Kind {
	case KindClientError, KindMalformedInput, KindNotFound:
		return ClassifiedResponse{Message: r.Message, ErrorCode: r.Code}
	case KindInternalFault:
		return NewInternalResponse(r.Code)
	default:
		return NewInternalResponse(ErrCodeInternal)
	}
}

// Wrap converts err into an AppError. Nil stays nil.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	if stderrors.Is(err, io.EOF) {
		return newAppError(KindMalformedInput, http.StatusBadRequest, ErrCodeBadRequest, "Request body is empty", err)
	}
	if IsParseFailure(err) {
		return MalformedInput(err)
	}
	var maxBytes *http.MaxBytesError
	if stderrors.As(err, &maxBytes) {
		return PayloadTooLarge(maxBytes.Limit)
	}
	return Internal(err)
}

// IsParseFailure reports whether err came from decoding a request payload.
// io.EOF, which the decoders return for an empty body, counts as one.
func IsParseFailure(err error) bool {
	var syntaxErr *json.SyntaxError
	if stderrors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		return true
	}
	return stderrors.Is(err, io.ErrUnexpectedEOF) || stderrors.Is(err, io.EOF)
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
