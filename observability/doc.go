// Package observability holds the service's OpenTelemetry metrics and
// component health checks.
//
// Metrics are recorded through the global meter provider, which is a no-op
// until InitMeter installs an OTLP exporter:
//
//	mp, err := observability.InitMeter(ctx, &cfg.Observability, "api", env)
//	defer mp.Shutdown(ctx)
//
//	faults, err := observability.NewFaultMetrics(observability.Meter())
//	faults.RecordHTTPError(ctx, "client_error", "ERR_CONFLICT", 409)
package observability
