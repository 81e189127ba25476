// Package errors defines the error taxonomy of the service: a closed set of
// kinds (client error, malformed input, not found, internal fault), the
// machine-readable codes clients branch on, and the immutable AppError value
// that carries them from a handler to the error dispatcher.
//
// Classify performs the exhaustive match used by the dispatcher:
//
//	res := errors.Classify(err)
//	c.JSON(res.Status, res.Body())
package errors
