// Package logger provides the process-wide structured logger, built on
// zerolog.
//
// Records fan out to a set of sinks, each with its own minimum level. The
// console sink is always present and renders a readable line followed by
// the stack and the record's metadata. In the production profile two
// rotating JSON sinks are added under the log directory:
//
//	logs/error-2006-01-02.log     error records only
//	logs/combined-2006-01-02.log  everything at or above the threshold
//
// Writing to a sink is best-effort: a failing sink never turns a log call
// into an error or a panic.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  dir: "logs"
//	  max_size: 20   # MB per segment
//	  max_age: 14    # days
//
// # Usage
//
//	log := logger.New(&cfg.Logging, "api")
//	defer log.Close()
//	log.LogError(err, reqCtx)
//	log.Info("listening", logger.Fields("addr", addr))
package logger
