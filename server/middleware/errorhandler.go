package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/faultline/errors"
	"github.com/kbukum/faultline/logger"
	"github.com/kbukum/faultline/observability"
	"github.com/kbukum/faultline/validation"
)

const (
	contentTypeJSON    = "application/json; charset=utf-8"
	defaultCaptureSize = 64 * 1024
	capturedBodyKey    = "faultline.captured_body"
)

// ErrorDispatcher is the terminal error stage of the request pipeline.
// Handlers surface errors with c.Error (or server.RespondWithError); each
// one is classified, logged once with its request context and counted.
// The last error decides the single JSON response.
type ErrorDispatcher struct {
	log         *logger.Logger
	metrics     *observability.FaultMetrics
	captureSize int
}

// DispatcherOption configures an ErrorDispatcher.
type DispatcherOption func(*ErrorDispatcher)

// WithFaultMetrics counts every dispatched error.
func WithFaultMetrics(m *observability.FaultMetrics) DispatcherOption {
	return func(d *ErrorDispatcher) { d.metrics = m }
}

// WithBodyCapture sets how many request body bytes are kept for the log
// record. Zero disables capture.
func WithBodyCapture(n int) DispatcherOption {
	return func(d *ErrorDispatcher) { d.captureSize = n }
}

// NewErrorDispatcher creates a dispatcher logging through log.
func NewErrorDispatcher(log *logger.Logger, opts ...DispatcherOption) *ErrorDispatcher {
	d := &ErrorDispatcher{
		log:         log.WithComponent("http"),
		captureSize: defaultCaptureSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handler returns the Gin middleware. Install it before Recovery so a
// recovered panic and a surfaced error take the same path.
func (d *ErrorDispatcher) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.captureSize > 0 && c.Request.Body != nil && c.Request.Body != http.NoBody {
			cb := &capturingBody{ReadCloser: c.Request.Body, limit: d.captureSize}
			c.Request.Body = cb
			c.Set(capturedBodyKey, cb)
		}

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		for _, ginErr := range c.Errors[:len(c.Errors)-1] {
			d.record(c, ginErr.Err, classify(ginErr.Err))
		}
		d.Dispatch(c, c.Errors.Last().Err)
	}
}

// Dispatch classifies err, logs it, and writes the response unless one was
// already written. It never panics; a body that cannot be encoded is
// replaced with the generic internal payload.
func (d *ErrorDispatcher) Dispatch(c *gin.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "error dispatcher: recovered while handling %v: %v\n", err, r)
			d.writeFallback(c)
		}
	}()

	res := classify(err)
	d.record(c, err, res)
	d.respond(c, res)
}

// classify also accepts the validator errors gin's own binding returns.
func classify(err error) apperrors.Resolution {
	return apperrors.Classify(validation.FromError(err))
}

func (d *ErrorDispatcher) record(c *gin.Context, err error, res apperrors.Resolution) {
	if err == nil {
		err = res.Err
	}
	d.log.LogError(err, d.requestContext(c))
	d.metrics.RecordHTTPError(c.Request.Context(), res.Kind.String(), res.Code.String(), res.Status)
}

func (d *ErrorDispatcher) respond(c *gin.Context, res apperrors.Resolution) {
	c.Abort()
	if c.Writer.Written() {
		return
	}
	body, err := json.Marshal(res.Body())
	if err != nil {
		d.writeFallback(c)
		return
	}
	c.Data(res.Status, contentTypeJSON, body)
}

func (d *ErrorDispatcher) writeFallback(c *gin.Context) {
	c.Abort()
	if c.Writer.Written() {
		return
	}
	c.Data(http.StatusInternalServerError, contentTypeJSON, apperrors.InternalFallbackBody())
}

func (d *ErrorDispatcher) requestContext(c *gin.Context) *logger.RequestContext {
	r := c.Request
	rc := &logger.RequestContext{
		ID:     c.GetString(RequestIDKey),
		Method: r.Method,
		URL:    originalURL(r),
		IP:     c.ClientIP(),
	}
	if len(r.Header) > 0 {
		rc.Headers = make(map[string]string, len(r.Header))
		for k, v := range r.Header {
			rc.Headers[k] = strings.Join(v, ", ")
		}
	}
	if len(c.Params) > 0 {
		rc.Params = make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			rc.Params[p.Key] = p.Value
		}
	}
	if q := r.URL.Query(); len(q) > 0 {
		rc.Query = q
	}
	if v, ok := c.Get(capturedBodyKey); ok {
		rc.Body = v.(*capturingBody).String()
	}
	return rc
}

// originalURL is the request target as the client sent it: path and query.
func originalURL(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}

// capturingBody keeps the first limit bytes read from the request body.
type capturingBody struct {
	io.ReadCloser
	limit int
	buf   bytes.Buffer
}

func (b *capturingBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if room := b.limit - b.buf.Len(); room > 0 && n > 0 {
		if n < room {
			room = n
		}
		b.buf.Write(p[:room])
	}
	return n, err
}

func (b *capturingBody) String() string {
	return b.buf.String()
}
