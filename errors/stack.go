package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
	"strings"
)

const maxStackDepth = 32

// callers renders the current goroutine's stack, skipping skip frames.
func callers(skip int) string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+1, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			break
		}
	}
	return b.String()
}

type stackTracer interface {
	Stack() string
}

// StackOf returns the stack recorded by the first error in err's chain that
// carries one, or an empty string.
func StackOf(err error) string {
	var st stackTracer
	if stderrors.As(err, &st) {
		return st.Stack()
	}
	return ""
}

// CaptureStack returns the caller's stack. Used when an error without a
// recorded stack reaches a handler that must log one.
func CaptureStack() string {
	return callers(2)
}

// PanicError is a recovered panic value turned into an error.
type PanicError struct {
	Value any
	stack string
}

// Recovered wraps a value obtained from recover() together with the stack
// captured at the recovery site (usually debug.Stack()).
func Recovered(v any, stack []byte) *PanicError {
	return &PanicError{Value: v, stack: string(stack)}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Stack returns the stack captured at recovery.
func (e *PanicError) Stack() string { return e.stack }

// Coerce turns an arbitrary failure reason into an error.
func Coerce(reason any) error {
	switch v := reason.(type) {
	case nil:
		return stderrors.New("unknown failure (nil reason)")
	case error:
		return v
	case string:
		return stderrors.New(v)
	case fmt.Stringer:
		return stderrors.New(v.String())
	default:
		return fmt.Errorf("%v", v)
	}
}
