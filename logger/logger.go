package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/kbukum/faultline/errors"
)

// FieldTimestamp carries the record time in UTC with millisecond precision.
const FieldTimestamp = "timestamp"

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Logger wraps zerolog.Logger with the service's sink set.
type Logger struct {
	logger      zerolog.Logger
	service     string
	environment string
	sinks       []*Sink
	redact      bool
	maxBody     int
}

// New creates a logger from config. The console sink is always present;
// when files are enabled the error-only and combined rotating sinks are
// added. A log directory that cannot be created disables the file sinks
// instead of failing startup.
func New(cfg *Config, serviceName string) *Logger {
	c := *cfg
	c.ApplyDefaults()

	level := parseLevel(c.Level, zerolog.InfoLevel)
	sinks := []*Sink{
		NewConsoleSink(outputWriter(c.Output), parseLevel(c.ConsoleLevel, level), c.NoColor),
	}
	if c.FilesEnabled() {
		fileSinks, err := newFileSinks(&c, level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: file sinks disabled: %v\n", err)
		} else {
			sinks = append(sinks, fileSinks...)
		}
	}
	return NewWithSinks(&c, serviceName, sinks...)
}

// NewWithSinks creates a logger writing to the given sinks only.
func NewWithSinks(cfg *Config, serviceName string, sinks ...*Sink) *Logger {
	c := *cfg
	c.ApplyDefaults()
	if serviceName == "" {
		serviceName = c.ServiceName
	}

	writers := make([]io.Writer, 0, len(sinks))
	minLevel := zerolog.Disabled
	for _, s := range sinks {
		writers = append(writers, s)
		if s.Level() < minLevel {
			minLevel = s.Level()
		}
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(minLevel).
		Hook(timestampHook{now: time.Now}).
		With().
		Str(FieldService, serviceName).
		Str(FieldEnvironment, c.Environment).
		Logger()

	return &Logger{
		logger:      zl,
		service:     serviceName,
		environment: c.Environment,
		sinks:       sinks,
		redact:      c.RedactionEnabled(),
		maxBody:     c.MaxBodyBytes,
	}
}

// NewDefault creates a development logger writing to the console only.
func NewDefault(serviceName string) *Logger {
	return New(&Config{Output: "stdout", Files: new(bool)}, serviceName)
}

func newFileSinks(cfg *Config, level zerolog.Level) ([]*Sink, error) {
	opts := []RotatorOption{
		WithDatePattern(cfg.DatePattern),
		WithMaxSize(cfg.MaxSize),
		WithMaxAge(cfg.MaxAge),
	}
	errRotator, err := NewDailyRotator(cfg.Dir, SinkError, opts...)
	if err != nil {
		return nil, err
	}
	combined, err := NewDailyRotator(cfg.Dir, SinkCombined, opts...)
	if err != nil {
		return nil, err
	}
	return []*Sink{
		NewSink(SinkError, errRotator, zerolog.ErrorLevel),
		NewSink(SinkCombined, combined, level),
	}, nil
}

type timestampHook struct {
	now func() time.Time
}

func (h timestampHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	e.Str(FieldTimestamp, h.now().UTC().Format(timestampLayout))
}

// Level returns the lowest level any sink accepts.
func (l *Logger) Level() zerolog.Level {
	return l.logger.GetLevel()
}

// Environment returns the profile the logger was built for.
func (l *Logger) Environment() string {
	return l.environment
}

// IsProduction reports whether the production profile is active.
func (l *Logger) IsProduction() bool {
	return l.environment == ProfileProduction
}

// Sinks returns the logger's sinks.
func (l *Logger) Sinks() []*Sink {
	return l.sinks
}

// WithComponent returns a logger tagged with a component name.
func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.logger.With().Str(FieldComponent, name).Logger())
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	zc := l.logger.With()
	for k, v := range fields {
		zc = zc.Interface(k, v)
	}
	return l.derive(zc.Logger())
}

func (l *Logger) derive(zl zerolog.Logger) *Logger {
	cp := *l
	cp.logger = zl
	return &cp
}

// GetLogger returns the underlying zerolog.Logger.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

// LogError records err at error level together with its type, its stack
// and, when req is non-nil, the HTTP request it occurred in. The stack is
// the one recorded when err was created, or the caller's stack otherwise.
func (l *Logger) LogError(err error, req *RequestContext) {
	if err == nil {
		err = apperrors.Coerce(nil)
	}
	stack := apperrors.StackOf(err)
	if stack == "" {
		stack = apperrors.CaptureStack()
	}

	event := l.logger.Error().
		Str(FieldErrorName, fmt.Sprintf("%T", err)).
		Str(FieldStack, stack)
	if appErr, ok := apperrors.AsAppError(err); ok {
		event = event.Str(FieldCode, appErr.Code().String()).Int(FieldStatus, appErr.StatusCode())
	}
	if req != nil {
		if l.redact {
			req = req.Sanitized(l.maxBody)
		}
		event = event.Interface(FieldRequest, req)
	}
	event.Msg(err.Error())
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	event := l.logger.Debug()
	addFields(event, fields...)
	event.Msg(msg)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	event := l.logger.Info()
	addFields(event, fields...)
	event.Msg(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	event := l.logger.Warn()
	addFields(event, fields...)
	event.Msg(msg)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	event := l.logger.Error()
	addFields(event, fields...)
	event.Msg(msg)
}

// Close closes the file sinks. The logger keeps accepting records
// afterwards; rotating sinks reopen their segment on the next write.
func (l *Logger) Close() error {
	var first error
	for _, s := range l.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = fmt.Errorf("close sink %s: %w", s.Name(), err)
		}
	}
	return first
}

// --- Global logger ---

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
	initOnce     sync.Once
)

// Init configures the process-wide logger. Only the first call has an
// effect; later calls return the logger built by the first.
func Init(cfg Config) *Logger {
	initOnce.Do(func() {
		SetGlobalLogger(New(&cfg, cfg.ServiceName))
	})
	return GetGlobalLogger()
}

// SetGlobalLogger sets the global logger instance.
func SetGlobalLogger(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// GetGlobalLogger returns the global logger, creating a default one if needed.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		return l
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalLogger == nil {
		globalLogger = NewDefault("default")
	}
	return globalLogger
}

// Package-level convenience functions delegate to the global logger.

func Debug(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...map[string]interface{}) {
	GetGlobalLogger().Error(msg, fields...)
}

// LogError records err on the global logger.
func LogError(err error, req *RequestContext) {
	GetGlobalLogger().LogError(err, req)
}

// WithComponent returns a component-tagged logger from the global logger.
func WithComponent(name string) *Logger {
	return GetGlobalLogger().WithComponent(name)
}

// --- internal helpers ---

func addFields(event *zerolog.Event, fields ...map[string]interface{}) {
	for _, fm := range fields {
		for k, v := range fm {
			event.Interface(k, v)
		}
	}
}

func parseLevel(s string, fallback zerolog.Level) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || s == "" {
		return fallback
	}
	return level
}

func outputWriter(output string) *os.File {
	switch strings.ToLower(output) {
	case "stderr":
		return os.Stderr
	default:
		return os.Stdout
	}
}
