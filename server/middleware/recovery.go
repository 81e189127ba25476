package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/faultline/errors"
)

// Recovery returns a Gin middleware that turns a handler panic into an
// error and hands it to the dispatcher with the stack at the panic site.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery(d *ErrorDispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(r)
				}
				d.Dispatch(c, apperrors.Recovered(r, debug.Stack()))
			}
		}()
		c.Next()
	}
}
