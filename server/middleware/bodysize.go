package middleware

import (
	"net/http"

	"github.com/kbukum/faultline/util"
)

const defaultMaxBodySize = 4 * 1024 * 1024 // 4MB

// BodySizeLimit returns middleware that restricts the request body to the
// given size ("4MB", "512KB"). Reading past the limit fails with
// *http.MaxBytesError, which the error dispatcher answers with 413.
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				r.Body = http.MaxBytesReader(w, r.Body, size)
			}
			next.ServeHTTP(w, r)
		})
	}
}
