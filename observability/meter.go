package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// InstrumentationName scopes the service's instruments.
const InstrumentationName = "github.com/kbukum/faultline"

// Config configures the OpenTelemetry meter provider. With Enabled false the
// global no-op provider is used and every instrument records nothing.
type Config struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"` // OTLP HTTP host:port
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval       time.Duration `yaml:"interval" mapstructure:"interval"`
	ServiceVersion string        `yaml:"service_version" mapstructure:"service_version"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = "1.0.0"
	}
}

// Validate validates the meter configuration.
func (c *Config) Validate() error {
	if c.Enabled && c.Endpoint == "" {
		return fmt.Errorf("observability.endpoint is required when metrics are enabled")
	}
	if c.Interval < 0 {
		return fmt.Errorf("observability.interval must be non-negative (got: %s)", c.Interval)
	}
	return nil
}

// InitMeter creates an OTLP/HTTP meter provider and installs it globally.
// The provider must be shut down on exit to flush the last export.
func InitMeter(ctx context.Context, cfg *Config, serviceName, environment string) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(newResource(serviceName, cfg.ServiceVersion, environment)),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// newResource describes the service. It is not merged with the SDK default
// resource so the semconv schema URL never conflicts with the SDK's.
func newResource(serviceName, serviceVersion, environment string) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(serviceVersion),
		attribute.String("environment", environment),
	)
}

// Meter returns the service meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}
