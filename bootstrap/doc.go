// Package bootstrap wires a service's fault-handling stack and runs it.
//
// NewApp builds the logger, the fault counters, the HTTP server and the
// process supervisor from one typed config. Run registers routes through
// OnConfigure callbacks, arms the supervisor, binds the server and blocks
// until the supervisor exits the process or the context is cancelled.
//
//	var cfg Config // embeds bootstrap.AppConfig
//	if err := config.LoadConfig("apiserver", &cfg); err != nil { ... }
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil { ... }
//	app.OnConfigure(registerRoutes)
//	if err := app.Run(ctx); err != nil { ... }
//
// A signal or fault exits at once after the log files are flushed.
// Cancelling the context instead drains the server, runs the OnStop hooks
// and flushes the meter provider.
package bootstrap
