package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DailyRotator writes to <dir>/<prefix>-<date>.log, opening a new segment
// when the date changes. Each segment is size-capped by lumberjack, and
// segments older than the retention window are removed on every rollover.
type DailyRotator struct {
	dir     string
	prefix  string
	pattern string
	maxSize int
	maxAge  int
	now     func() time.Time

	mu      sync.Mutex
	day     string
	current *lumberjack.Logger
}

// RotatorOption configures a DailyRotator.
type RotatorOption func(*DailyRotator)

// WithDatePattern sets the Go time layout used in segment names.
func WithDatePattern(layout string) RotatorOption {
	return func(r *DailyRotator) { r.pattern = layout }
}

// WithMaxSize sets the per-segment size ceiling in megabytes.
func WithMaxSize(mb int) RotatorOption {
	return func(r *DailyRotator) { r.maxSize = mb }
}

// WithMaxAge sets the retention window in days. Zero keeps everything.
func WithMaxAge(days int) RotatorOption {
	return func(r *DailyRotator) { r.maxAge = days }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RotatorOption {
	return func(r *DailyRotator) { r.now = now }
}

// NewDailyRotator creates the log directory and returns a rotator. No file
// is opened until the first write.
func NewDailyRotator(dir, prefix string, opts ...RotatorOption) (*DailyRotator, error) {
	r := &DailyRotator{
		dir:     dir,
		prefix:  prefix,
		pattern: "2006-01-02",
		maxSize: 20,
		maxAge:  14,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}
	return r, nil
}

// Write implements io.Writer.
func (r *DailyRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	day := r.now().Format(r.pattern)
	if r.current == nil || day != r.day {
		if r.current != nil {
			_ = r.current.Close()
		}
		r.day = day
		r.current = &lumberjack.Logger{
			Filename:  r.segmentPath(day),
			MaxSize:   r.maxSize,
			MaxAge:    r.maxAge,
			LocalTime: true,
		}
		r.prune()
	}
	return r.current.Write(p)
}

// Path returns the path of the active segment, or "" before the first write.
func (r *DailyRotator) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return ""
	}
	return r.current.Filename
}

// Close closes the active segment.
func (r *DailyRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	err := r.current.Close()
	r.current = nil
	return err
}

func (r *DailyRotator) segmentPath(day string) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s-%s.log", r.prefix, day))
}

// prune deletes segments whose date is older than maxAge days. Size backups
// created by lumberjack share the date prefix and age out with their day.
func (r *DailyRotator) prune() {
	if r.maxAge <= 0 {
		return
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return
	}

	now := r.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := today.AddDate(0, 0, -r.maxAge)
	dateLen := len(now.Format(r.pattern))
	lead := r.prefix + "-"

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, lead) || !strings.HasSuffix(name, ".log") {
			continue
		}
		rest := strings.TrimPrefix(name, lead)
		if len(rest) < dateLen {
			continue
		}
		day, err := time.ParseInLocation(r.pattern, rest[:dateLen], now.Location())
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			_ = os.Remove(filepath.Join(r.dir, name))
		}
	}
}
