package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/faultline/util"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-Id"
	// RequestIDKey is the gin.Context key holding the request ID.
	RequestIDKey = "request_id"
)

// RequestID assigns every request an ID. A client-supplied ID is kept only
// when it is a UUID, so arbitrary header values never reach the logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := util.NormalizeRequestID(c.GetHeader(RequestIDHeader))
		if !ok {
			id = uuid.New().String()
		}
		c.Set(RequestIDKey, id)
		c.Request.Header.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
