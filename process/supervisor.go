package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	apperrors "github.com/kbukum/faultline/errors"
	"github.com/kbukum/faultline/logger"
	"github.com/kbukum/faultline/observability"
)

// ErrAlreadyArmed is returned by Arm on every call after the first.
var ErrAlreadyArmed = errors.New("process: supervisor already armed")

// State is the supervisor's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateFaultedPending
	StateFaulted
	StateShuttingDown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateFaultedPending:
		return "faulted_pending"
	case StateFaulted:
		return "faulted"
	case StateShuttingDown:
		return "shutting_down"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether the process is on its way out.
func (s State) Terminal() bool {
	return s == StateFaulted || s == StateShuttingDown
}

// Signal identifies a process-level fault.
type Signal string

const (
	SignalRejection Signal = "rejection"
	SignalException Signal = "exception"
	SignalTerminate Signal = "terminate"
	SignalInterrupt Signal = "interrupt"
)

// Exit codes.
const (
	ExitGraceful = 0
	ExitFault    = 1
)

// NotifyFunc subscribes c to OS signals, like signal.Notify.
type NotifyFunc func(c chan<- os.Signal, sig ...os.Signal)

// Supervisor turns process-level faults into log records and an exit code.
type Supervisor struct {
	log        *logger.Logger
	metrics    *observability.FaultMetrics
	clock      Clock
	exit       func(int)
	notify     NotifyFunc
	stopNotify func(chan<- os.Signal)
	grace      time.Duration
	production bool

	mu      sync.Mutex
	state   State
	pending Timer
	sigCh   chan os.Signal

	exitOnce sync.Once
	exitCode int
	done     chan struct{}
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithClock replaces the clock used for the rejection grace period.
func WithClock(c Clock) Option {
	return func(s *Supervisor) { s.clock = c }
}

// WithExit replaces os.Exit.
func WithExit(exit func(int)) Option {
	return func(s *Supervisor) { s.exit = exit }
}

// WithSignalNotifier replaces signal.Notify and signal.Stop.
func WithSignalNotifier(notify NotifyFunc, stop func(chan<- os.Signal)) Option {
	return func(s *Supervisor) {
		s.notify = notify
		s.stopNotify = stop
	}
}

// WithConfig applies the grace period.
func WithConfig(cfg Config) Option {
	return func(s *Supervisor) {
		cfg.ApplyDefaults()
		s.grace = cfg.GracePeriod
	}
}

// WithMetrics counts every handled signal.
func WithMetrics(m *observability.FaultMetrics) Option {
	return func(s *Supervisor) { s.metrics = m }
}

// WithProduction overrides the profile taken from the logger.
func WithProduction(production bool) Option {
	return func(s *Supervisor) { s.production = production }
}

// NewSupervisor creates an idle supervisor. The production profile, which
// makes rejections fatal, follows the logger's environment by default.
func NewSupervisor(log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		log:        log.WithComponent("process"),
		clock:      SystemClock(),
		exit:       os.Exit,
		notify:     signal.Notify,
		stopNotify: signal.Stop,
		grace:      time.Second,
		production: log.IsProduction(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Arm subscribes to SIGTERM and SIGINT and starts handling faults. It may
// be called once; later calls return ErrAlreadyArmed. Cancelling ctx stops
// the signal subscription but leaves fault handling in place.
func (s *Supervisor) Arm(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrAlreadyArmed
	}
	s.state = StateArmed
	s.sigCh = make(chan os.Signal, 2)
	s.notify(s.sigCh, syscall.SIGTERM, os.Interrupt)
	s.mu.Unlock()

	go s.watch(ctx, s.sigCh)

	s.log.Debug("Process fault handlers armed", logger.Fields(
		"production", s.production,
		"grace_period", s.grace.String(),
	))
	return nil
}

func (s *Supervisor) watch(ctx context.Context, ch chan os.Signal) {
	defer s.stopNotify(ch)
	select {
	case <-ctx.Done():
	case <-s.done:
	case sig := <-ch:
		s.HandleSignal(sig)
	}
}

// State returns the current state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the exit function has been called.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// ExitCode returns the code passed to the exit function, valid after Done.
func (s *Supervisor) ExitCode() int {
	<-s.done
	return s.exitCode
}

// HandleException records an uncaught fault and exits with code 1 at once.
func (s *Supervisor) HandleException(err error) {
	if err == nil {
		err = apperrors.Coerce(nil)
	}
	s.record(SignalException)
	s.log.LogError(err, nil)
	s.log.Error("Uncaught exception, terminating process", logger.Fields(
		logger.FieldSignal, string(SignalException),
		logger.FieldErrorName, fmt.Sprintf("%T", err),
		logger.FieldError, err.Error(),
	))

	if s.transition(StateFaulted) {
		s.terminate(ExitFault)
	}
}

// HandleRejection records a failure nobody awaited. reason is coerced to an
// error when it is not one. In production the process exits with code 1
// once the grace period has elapsed; otherwise it keeps running.
func (s *Supervisor) HandleRejection(reason any, operation string) {
	err := apperrors.Coerce(reason)
	s.record(SignalRejection)
	s.log.LogError(err, nil)
	s.log.Error("Unhandled rejection", logger.Fields(
		logger.FieldSignal, string(SignalRejection),
		logger.FieldReason, fmt.Sprintf("%v", reason),
		logger.FieldOperation, operation,
	))

	if !s.production {
		return
	}

	s.mu.Lock()
	if s.state.Terminal() || s.state == StateFaultedPending {
		s.mu.Unlock()
		return
	}
	s.state = StateFaultedPending
	s.mu.Unlock()

	timer := s.clock.AfterFunc(s.grace, func() {
		if s.transition(StateFaulted) {
			s.terminate(ExitFault)
		}
	})

	s.mu.Lock()
	if s.state == StateFaultedPending {
		s.pending = timer
	}
	s.mu.Unlock()
}

// HandleSignal records a termination request and exits with code 0.
func (s *Supervisor) HandleSignal(sig os.Signal) {
	kind := SignalTerminate
	if sig == os.Interrupt {
		kind = SignalInterrupt
	}
	s.record(kind)
	s.log.Info(fmt.Sprintf("%s received, shutting down", signalName(sig)), logger.Fields(
		logger.FieldSignal, string(kind),
	))

	if s.transition(StateShuttingDown) {
		s.terminate(ExitGraceful)
	}
}

// Go runs fn in a supervised goroutine. A panic is handled as an uncaught
// exception, a returned error as a rejection of the named operation.
func (s *Supervisor) Go(name string, fn func() error) {
	go func() {
		defer s.Recover()
		if err := fn(); err != nil {
			s.HandleRejection(err, name)
		}
	}()
}

// Recover handles a panic in progress as an uncaught exception. It must be
// deferred directly:
//
//	defer sup.Recover()
func (s *Supervisor) Recover() {
	if r := recover(); r != nil {
		s.HandleException(apperrors.Recovered(r, debug.Stack()))
	}
}

// CheckHealth reports the process as down once a fault or signal has
// started its exit.
func (s *Supervisor) CheckHealth(context.Context) observability.Health {
	state := s.State()
	h := observability.Health{Name: "process", Status: observability.HealthStatusUp}
	if state == StateFaultedPending || state.Terminal() {
		h.Status = observability.HealthStatusDown
		h.Message = state.String()
	}
	return h
}

// transition moves to a terminal state unless one was already reached.
func (s *Supervisor) transition(to State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return false
	}
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.state = to
	return true
}

func (s *Supervisor) terminate(code int) {
	s.exitOnce.Do(func() {
		// Only the log sinks are flushed; nothing may hold up the exit.
		if err := s.log.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "process: flush logs: %v\n", err)
		}
		s.exitCode = code
		close(s.done)
		s.exit(code)
	})
}

func (s *Supervisor) record(sig Signal) {
	s.metrics.RecordProcessFault(context.Background(), string(sig))
}

func signalName(sig os.Signal) string {
	switch sig {
	case syscall.SIGTERM:
		return "SIGTERM"
	case os.Interrupt:
		return "SIGINT"
	default:
		return sig.String()
	}
}
