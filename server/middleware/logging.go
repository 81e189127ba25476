package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/faultline/logger"
)

// RequestLogger returns middleware that logs every request with method,
// path, status code and duration. Health checks are skipped. Failed
// requests are logged in full by the error dispatcher, so a 5xx line is
// kept at debug and a fault yields a single error record.
func RequestLogger(log *logger.Logger, skipPaths ...string) Middleware {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := map[string]interface{}{
				"method":             r.Method,
				"path":               r.URL.Path,
				logger.FieldStatus:   sw.status,
				logger.FieldDuration: time.Since(start).Milliseconds(),
			}
			if id := r.Header.Get(RequestIDHeader); id != "" {
				fields[logger.FieldRequestID] = id
			}
			logByStatus(log, fields, sw.status)
		})
	}
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Debug("Request failed", fields)
	case status >= 400:
		log.Info("Request rejected", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
