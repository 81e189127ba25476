package observability

import "context"

// HealthStatus represents the health state of a component or service.
type HealthStatus string

const (
	HealthStatusUp   HealthStatus = "up"
	HealthStatusDown HealthStatus = "down"
)

// Health describes the health of an individual component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// ServiceHealth is the combined health of a service's components.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Components []Health     `json:"components,omitempty"`
}

// CheckAll runs every checker. The service is down as soon as one
// component is.
func CheckAll(ctx context.Context, service string, checkers ...HealthChecker) *ServiceHealth {
	sh := &ServiceHealth{Service: service, Status: HealthStatusUp}
	for _, c := range checkers {
		h := c.CheckHealth(ctx)
		sh.Components = append(sh.Components, h)
		if h.Status == HealthStatusDown {
			sh.Status = HealthStatusDown
		}
	}
	return sh
}
