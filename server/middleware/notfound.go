package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/faultline/errors"
	"github.com/kbukum/faultline/observability"
)

// NotFound returns the handler for requests that matched no route. The body
// echoes the method and the original URL; now stamps it (nil means
// time.Now).
func NotFound(now func() time.Time, metrics *observability.FaultMetrics) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		metrics.RecordNotFound(c.Request.Context(), c.Request.Method)

		body, err := json.Marshal(apperrors.NewNotFoundResponse(c.Request.Method, originalURL(c.Request), now()))
		if err != nil {
			c.Data(http.StatusInternalServerError, contentTypeJSON, apperrors.InternalFallbackBody())
			return
		}
		c.Data(http.StatusNotFound, contentTypeJSON, body)
	}
}
