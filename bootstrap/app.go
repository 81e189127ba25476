package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/faultline/logger"
	"github.com/kbukum/faultline/observability"
	"github.com/kbukum/faultline/process"
	"github.com/kbukum/faultline/server"
)

// App wires the fault-handling stack for one service: logger, fault
// metrics, HTTP server and process supervisor. The type parameter C is the
// config type; any struct embedding AppConfig satisfies Config.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    a.Server.GinEngine().POST("/signup", server.Wrap(signup))
//	    return nil
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Logger     *logger.Logger
	Metrics    *observability.FaultMetrics
	Server     *server.Server
	Supervisor *process.Supervisor

	meter           *sdkmetric.MeterProvider
	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart  []Hook
	onReady  []Hook
	onStop   []Hook
	stopOnce sync.Once
	stopErr  error
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, and builds every component.
// Nothing listens or handles signals until Run.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetAppConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	if o.logger != nil {
		app.Logger = o.logger
	} else {
		app.Logger = logger.Init(base.Logging)
	}

	if err := app.initMetrics(base, o.metrics); err != nil {
		return nil, err
	}

	supOpts := []process.Option{
		process.WithConfig(base.Process),
		process.WithMetrics(app.Metrics),
	}
	app.Supervisor = process.NewSupervisor(app.Logger, append(supOpts, o.supervisorOpts...)...)

	srvOpts := []server.Option{
		server.WithFaultMetrics(app.Metrics),
		server.WithRunner(app.Supervisor.Go),
	}
	app.Server = server.New(base.Server, app.Logger, append(srvOpts, o.serverOpts...)...)
	app.Server.RegisterDefaultEndpoints(base.Name, app.Supervisor)

	return app, nil
}

func (a *App[C]) initMetrics(base *AppConfig, metrics *observability.FaultMetrics) error {
	if metrics != nil {
		a.Metrics = metrics
		return nil
	}
	if base.Observability.Enabled {
		cfg := base.Observability
		if cfg.ServiceVersion == "" && base.Version != "" {
			cfg.ServiceVersion = base.Version
		}
		mp, err := observability.InitMeter(context.Background(), &cfg, base.Name, base.Environment)
		if err != nil {
			return fmt.Errorf("init meter: %w", err)
		}
		a.meter = mp
	}
	m, err := observability.NewFaultMetrics(observability.Meter())
	if err != nil {
		return fmt.Errorf("fault metrics: %w", err)
	}
	a.Metrics = m
	return nil
}

// OnConfigure registers a callback that runs before the server starts.
// Register routes here.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// Run executes the service lifecycle: OnStart hooks, configure callbacks,
// arming the supervisor, binding the server, OnReady hooks. It then blocks
// until the supervisor has exited the process or ctx is cancelled, in
// which case the server is drained within the graceful timeout.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready")
	select {
	case <-a.Supervisor.Done():
		return nil
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return a.Shutdown()
	}
}

func (a *App[C]) startup(ctx context.Context) error {
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":        a.Name,
		"version":     a.Version,
		"environment": a.Logger.Environment(),
	})

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configuration failed: %w", err)
		}
	}
	if err := a.Supervisor.Arm(ctx); err != nil {
		return fmt.Errorf("arm supervisor: %w", err)
	}
	if err := a.Server.Start(ctx); err != nil {
		return err
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully and runs the stop hooks. Run calls
// it when its context is cancelled; call it directly when managing your own
// lifecycle. Process exits driven by the supervisor skip it.
func (a *App[C]) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	err := a.Server.Stop(ctx)
	if stopErr := a.stop(ctx); err == nil {
		err = stopErr
	}
	return err
}

// stop runs the OnStop hooks, flushes metrics and closes the log files.
// It runs at most once.
func (a *App[C]) stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		if err := runHooks(ctx, a.onStop); err != nil {
			a.Logger.Error("OnStop hook error", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
			a.stopErr = err
		}
		if a.meter != nil {
			if err := a.meter.Shutdown(ctx); err != nil && a.stopErr == nil {
				a.stopErr = fmt.Errorf("meter shutdown: %w", err)
			}
		}
		a.Logger.Info("Application shutdown complete")
		if err := a.Logger.Close(); err != nil && a.stopErr == nil {
			a.stopErr = err
		}
	})
	return a.stopErr
}
