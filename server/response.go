package server

import (
	"github.com/gin-gonic/gin"
)

// HandlerFunc is a Gin handler that reports failure by returning an error.
type HandlerFunc func(c *gin.Context) error

// Wrap adapts h to gin. A returned error goes to the error dispatcher, so
// handlers never write error bodies themselves.
func Wrap(h HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h(c); err != nil {
			RespondWithError(c, err)
		}
	}
}

// RespondWithError hands err to the error dispatcher and stops the handler
// chain. The dispatcher picks the status and body once the chain unwinds.
func RespondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
