package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/faultline/logger"
	"github.com/kbukum/faultline/observability"
	"github.com/kbukum/faultline/server/endpoint"
	"github.com/kbukum/faultline/server/middleware"
)

// Runner starts fn in the background under the given name. The process
// supervisor's Go method is a Runner.
type Runner func(name string, fn func() error)

// Server is an HTTP server backed by Gin and served over h2c. Every request
// passes through the error dispatcher; unmatched routes get the not-found
// body.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mux        *http.ServeMux
	handler    http.Handler
	config     Config
	log        *logger.Logger
	dispatcher *middleware.ErrorDispatcher
	metrics    *observability.FaultMetrics
	now        func() time.Time
	run        Runner
	listener   net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithFaultMetrics counts dispatched errors and unmatched routes.
func WithFaultMetrics(m *observability.FaultMetrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithClock replaces the clock stamping not-found bodies.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithRunner replaces the goroutine launcher used by Start, so a serve
// failure after the port is bound reaches the caller.
func WithRunner(run Runner) Option {
	return func(s *Server) { s.run = run }
}

// New creates a server with the fault-handling pipeline installed:
// CORS, body-size limit and request logging wrap the whole handler; inside
// Gin every request gets an ID, the error dispatcher and panic recovery.
func New(cfg Config, log *logger.Logger, opts ...Option) *Server {
	cfg.ApplyDefaults()

	if gin.Mode() != gin.TestMode {
		if log.Level() <= zerolog.DebugLevel {
			gin.SetMode(gin.DebugMode)
		} else {
			gin.SetMode(gin.ReleaseMode)
		}
	}

	s := &Server{
		config: cfg,
		log:    log.WithComponent("server"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.run == nil {
		s.run = s.goRun
	}

	s.dispatcher = middleware.NewErrorDispatcher(log,
		middleware.WithFaultMetrics(s.metrics),
		middleware.WithBodyCapture(cfg.CaptureBytes),
	)

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		s.dispatcher.Handler(),
		middleware.Recovery(s.dispatcher),
	)
	engine.NoRoute(middleware.NotFound(s.now, s.metrics))

	mux := http.NewServeMux()
	mux.Handle("/", engine)

	chain := middleware.Chain(
		middleware.CORS(&s.config.CORS),
		middleware.BodySizeLimit(cfg.MaxBodySize),
		middleware.RequestLogger(s.log, endpoint.HealthPath),
	)
	s.handler = chain(mux)

	// h2c serves HTTP/2 over cleartext alongside HTTP/1.1.
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	s.engine = engine
	s.mux = mux
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h2c.NewHandler(s.handler, h2s),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
	}
	return s
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the full request pipeline without the h2c wrapper.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Dispatcher returns the error dispatcher installed on the engine.
func (s *Server) Dispatcher() *middleware.ErrorDispatcher {
	return s.dispatcher
}

// Handle mounts an http.Handler at the given pattern on the root ServeMux,
// next to Gin. The pattern must include a trailing slash for subtree matches.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
	s.log.Debug("Handler mounted", map[string]interface{}{
		"pattern": pattern,
	})
}

// RegisterDefaultEndpoints registers GET / and GET /health. The health
// endpoint reports unhealthy as soon as one checker is down.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checkers ...observability.HealthChecker) {
	s.engine.GET("/", endpoint.Welcome(serviceName))
	s.engine.GET(endpoint.HealthPath, endpoint.Health(serviceName, checkers...))
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues through
// the runner.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting HTTP server", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener

	s.run("http.serve", func() error {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve %s: %w", listener.Addr(), err)
		}
		return nil
	})

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": listener.Addr().String(),
	})
	return nil
}

func (s *Server) goRun(name string, fn func() error) {
	go func() {
		if err := fn(); err != nil {
			s.log.Error("Server error", map[string]interface{}{
				logger.FieldOperation: name,
				logger.FieldError:     err.Error(),
			})
		}
	}()
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
