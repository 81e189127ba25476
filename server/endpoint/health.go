package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/faultline/observability"
)

// HealthPath is where Health is mounted. Request logging skips it.
const HealthPath = "/health"

// StatusResponse is the body of the welcome and health endpoints.
type StatusResponse struct {
	Message    string                 `json:"message"`
	Status     string                 `json:"status"`
	Components []observability.Health `json:"components,omitempty"`
}

// Welcome answers GET / so clients can check they reached the service.
func Welcome(serviceName string) gin.HandlerFunc {
	body := StatusResponse{Message: "Welcome to the " + serviceName + " API", Status: "OK"}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, body)
	}
}

// Health returns 200 while every checker is up. Otherwise it returns 503
// and lists the components so the failing one is visible.
func Health(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.CheckAll(c.Request.Context(), serviceName, checkers...)
		if sh.Status == observability.HealthStatusDown {
			c.JSON(http.StatusServiceUnavailable, StatusResponse{
				Message:    "Server is unhealthy",
				Status:     "DOWN",
				Components: sh.Components,
			})
			return
		}
		c.JSON(http.StatusOK, StatusResponse{Message: "Server is healthy", Status: "OK"})
	}
}
