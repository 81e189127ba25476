package bootstrap

import (
	"time"

	"github.com/kbukum/faultline/logger"
	"github.com/kbukum/faultline/observability"
	"github.com/kbukum/faultline/process"
	"github.com/kbukum/faultline/server"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	metrics         *observability.FaultMetrics
	gracefulTimeout *time.Duration
	supervisorOpts  []process.Option
	serverOpts      []server.Option
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the global logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithFaultMetrics sets the fault counters instead of building them from
// the observability config.
func WithFaultMetrics(m *observability.FaultMetrics) Option {
	return func(o *appOptions) {
		o.metrics = m
	}
}

// WithGracefulTimeout sets the maximum duration for a context-initiated
// shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithSupervisorOptions passes options to the process supervisor, after
// the ones the App sets itself.
func WithSupervisorOptions(opts ...process.Option) Option {
	return func(o *appOptions) {
		o.supervisorOpts = append(o.supervisorOpts, opts...)
	}
}

// WithServerOptions passes options to the HTTP server, after the ones the
// App sets itself.
func WithServerOptions(opts ...server.Option) Option {
	return func(o *appOptions) {
		o.serverOpts = append(o.serverOpts, opts...)
	}
}
