package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument names.
const (
	MetricHTTPErrors    = "http.server.errors"
	MetricHTTPNotFound  = "http.server.not_found"
	MetricProcessFaults = "process.faults"
)

// FaultMetrics counts handled faults. A nil *FaultMetrics records nothing.
type FaultMetrics struct {
	httpErrors    metric.Int64Counter
	notFound      metric.Int64Counter
	processFaults metric.Int64Counter
}

// NewFaultMetrics creates the fault counters on the given meter.
func NewFaultMetrics(meter metric.Meter) (*FaultMetrics, error) {
	httpErrors, err := meter.Int64Counter(MetricHTTPErrors,
		metric.WithDescription("Errors handled by the error dispatcher"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricHTTPErrors, err)
	}

	notFound, err := meter.Int64Counter(MetricHTTPNotFound,
		metric.WithDescription("Requests that matched no route"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricHTTPNotFound, err)
	}

	processFaults, err := meter.Int64Counter(MetricProcessFaults,
		metric.WithDescription("Process-level faults and termination signals"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricProcessFaults, err)
	}

	return &FaultMetrics{
		httpErrors:    httpErrors,
		notFound:      notFound,
		processFaults: processFaults,
	}, nil
}

// RecordHTTPError counts one dispatched error.
func (m *FaultMetrics) RecordHTTPError(ctx context.Context, kind, code string, status int) {
	if m == nil {
		return
	}
	m.httpErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("code", code),
		attribute.Int("status", status),
	))
}

// RecordNotFound counts one unmatched request.
func (m *FaultMetrics) RecordNotFound(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.notFound.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// RecordProcessFault counts one process-level signal.
func (m *FaultMetrics) RecordProcessFault(ctx context.Context, signal string) {
	if m == nil {
		return
	}
	m.processFaults.Add(ctx, 1, metric.WithAttributes(attribute.String("signal", signal)))
}
