package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sink is a single log destination with its own minimum level. Writes are
// serialized so records reach the destination in call order, and a failing
// destination never surfaces an error to the caller.
type Sink struct {
	name  string
	level zerolog.Level
	out   io.Writer

	mu       sync.Mutex
	reported bool
	keepOpen bool
}

// NewSink creates a sink that accepts records at level and above.
func NewSink(name string, out io.Writer, level zerolog.Level) *Sink {
	return &Sink{name: name, level: level, out: out}
}

// NewConsoleSink creates the human-readable interactive sink.
func NewConsoleSink(out io.Writer, level zerolog.Level, noColor bool) *Sink {
	s := NewSink(SinkConsole, newConsoleWriter(out, noColor), level)
	s.keepOpen = true
	return s
}

// Name returns the sink name.
func (s *Sink) Name() string { return s.name }

// Level returns the sink's minimum level.
func (s *Sink) Level() zerolog.Level { return s.level }

// Write implements io.Writer for records without a level.
func (s *Sink) Write(p []byte) (int, error) {
	return s.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter.
func (s *Sink) WriteLevel(l zerolog.Level, p []byte) (n int, err error) {
	if l < s.level {
		return len(p), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			s.report(fmt.Errorf("panic: %v", r))
			n, err = len(p), nil
		}
	}()

	if _, werr := s.out.Write(p); werr != nil {
		s.report(werr)
	}
	return len(p), nil
}

// Close closes the underlying destination when it is closable.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keepOpen || s.out == os.Stdout || s.out == os.Stderr {
		return nil
	}
	if c, ok := s.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// report prints the first write failure of the sink to stderr.
func (s *Sink) report(err error) {
	if s.reported {
		return
	}
	s.reported = true
	fmt.Fprintf(os.Stderr, "logger: sink %q write failed, further failures suppressed: %v\n", s.name, err)
}

// Sink names.
const (
	SinkConsole  = "console"
	SinkError    = "error"
	SinkCombined = "combined"
)

// consoleMetadata holds the fields FormatPrepare moves out of the inline
// key=value list so FormatExtra can print them as one indented object.
const consoleMetadata = "_metadata"

// newConsoleWriter renders records as
//
//	2006-01-02 15:04:05 [LVL]: message
//	<stack>
//	{ pretty metadata }
func newConsoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:           out,
		NoColor:       noColor,
		PartsOrder:    []string{FieldTimestamp, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FieldsExclude: []string{FieldTimestamp, FieldStack, consoleMetadata},
		FormatPartValueByName: func(i interface{}, name string) string {
			if name == FieldTimestamp {
				return consoleTime(i)
			}
			return fmt.Sprintf("%v", i)
		},
		FormatLevel: func(i interface{}) string {
			lvl := strings.ToUpper(fmt.Sprintf("%s", i))
			if !noColor {
				switch lvl {
				case "DEBUG":
					lvl = "\033[36m[DBG]\033[0m"
				case "INFO":
					lvl = "\033[32m[INF]\033[0m"
				case "WARN":
					lvl = "\033[33m[WRN]\033[0m"
				case "ERROR":
					lvl = "\033[31m[ERR]\033[0m"
				case "FATAL":
					lvl = "\033[35m[FTL]\033[0m"
				default:
					lvl = fmt.Sprintf("[%s]", lvl)
				}
			} else {
				switch lvl {
				case "DEBUG":
					lvl = "[DBG]"
				case "INFO":
					lvl = "[INF]"
				case "WARN":
					lvl = "[WRN]"
				case "ERROR":
					lvl = "[ERR]"
				case "FATAL":
					lvl = "[FTL]"
				default:
					lvl = fmt.Sprintf("[%s]", lvl)
				}
			}
			return lvl + ":"
		},
		FormatMessage: func(i interface{}) string {
			if i == nil {
				return ""
			}
			return fmt.Sprintf("%v", i)
		},
		FormatPrepare: func(evt map[string]interface{}) error {
			meta := make(map[string]interface{})
			for k, v := range evt {
				switch k {
				case FieldTimestamp, FieldStack, zerolog.LevelFieldName, zerolog.MessageFieldName:
					continue
				}
				meta[k] = v
				delete(evt, k)
			}
			if len(meta) > 0 {
				evt[consoleMetadata] = meta
			}
			return nil
		},
		FormatExtra: func(evt map[string]interface{}, buf *bytes.Buffer) error {
			if stack, ok := evt[FieldStack].(string); ok && stack != "" {
				buf.WriteByte('\n')
				buf.WriteString(strings.TrimRight(stack, "\n"))
			}
			if meta, ok := evt[consoleMetadata]; ok {
				b, err := json.MarshalIndent(meta, "", "  ")
				if err != nil {
					return err
				}
				buf.WriteByte('\n')
				buf.Write(b)
			}
			return nil
		},
	}
}

func consoleTime(v interface{}) string {
	s, _ := v.(string)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Local().Format("2006-01-02 15:04:05")
	}
	if s != "" {
		return s
	}
	return time.Now().Format("2006-01-02 15:04:05")
}
