package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kbukum/faultline/logger"
	"github.com/kbukum/faultline/server/middleware"
)

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

func TestRecovery_NoPanic(t *testing.T) {
	env := newTestEnv(t, "development")
	env.engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	rr := env.do(httptest.NewRequest("GET", "/", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if n := len(env.errorRecords(t)); n != 0 {
		t.Errorf("expected no error records, got %d", n)
	}
}

func TestRecovery_ReraisesAbortHandler(t *testing.T) {
	env := newTestEnv(t, "development")
	env.engine.GET("/abort", func(c *gin.Context) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if r := recover(); r != http.ErrAbortHandler {
			t.Fatalf("expected http.ErrAbortHandler to propagate, got %v", r)
		}
	}()
	env.do(httptest.NewRequest("GET", "/abort", http.NoBody))
	t.Fatal("expected panic")
}

// ---------------------------------------------------------------------------
// RequestID
// ---------------------------------------------------------------------------

func requestIDEngine(seen *string) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.GET("/", func(c *gin.Context) {
		*seen = c.GetString(middleware.RequestIDKey)
		c.Status(http.StatusOK)
	})
	return engine
}

func TestRequestID_GeneratesID(t *testing.T) {
	var seen string
	rr := httptest.NewRecorder()
	requestIDEngine(&seen).ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	id := rr.Header().Get(middleware.RequestIDHeader)
	if id == "" {
		t.Fatal("expected response to carry a request ID")
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected a UUID, got %q", id)
	}
	if seen != id {
		t.Errorf("handler saw %q, response carried %q", seen, id)
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	existing := uuid.New().String()
	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set(middleware.RequestIDHeader, existing)

	var seen string
	rr := httptest.NewRecorder()
	requestIDEngine(&seen).ServeHTTP(rr, req)

	if got := rr.Header().Get(middleware.RequestIDHeader); got != existing {
		t.Fatalf("expected %q, got %q", existing, got)
	}
	if seen != existing {
		t.Errorf("handler saw %q", seen)
	}
}

func TestRequestID_ReplacesInvalid(t *testing.T) {
	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set(middleware.RequestIDHeader, "<script>alert(1)</script>")

	var seen string
	rr := httptest.NewRecorder()
	requestIDEngine(&seen).ServeHTTP(rr, req)

	got := rr.Header().Get(middleware.RequestIDHeader)
	if strings.Contains(got, "script") {
		t.Fatalf("untrusted ID was kept: %q", got)
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Errorf("expected a generated UUID, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// CORS
// ---------------------------------------------------------------------------

func corsHandler(cfg *middleware.CORSConfig) http.Handler {
	cfg.ApplyDefaults()
	return middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCORS_SetHeaders(t *testing.T) {
	handler := corsHandler(&middleware.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest("GET", "/api", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected origin header, got %q", got)
	}
	if got := rr.Header().Get("Vary"); got != "Origin" {
		t.Errorf("expected Vary: Origin, got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, middleware.RequestIDHeader) {
		t.Errorf("expected the request ID header to be allowed, got %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	called := false
	cfg := &middleware.CORSConfig{AllowedOrigins: []string{"*"}}
	cfg.ApplyDefaults()
	handler := middleware.CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("OPTIONS", "/api", http.NoBody)
	req.Header.Set("Origin", "http://example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if called {
		t.Error("preflight must not reach the handler")
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	handler := corsHandler(&middleware.CORSConfig{AllowedOrigins: []string{"http://allowed.com"}})

	req := httptest.NewRequest("GET", "/api", http.NoBody)
	req.Header.Set("Origin", "http://evil.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no origin header, got %q", got)
	}
}

func TestCORS_Credentials(t *testing.T) {
	handler := corsHandler(&middleware.CORSConfig{
		AllowedOrigins:   []string{"http://app.com"},
		AllowCredentials: true,
	})

	req := httptest.NewRequest("GET", "/api", http.NoBody)
	req.Header.Set("Origin", "http://app.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials header, got %q", got)
	}
}

func TestCORS_NoOriginsPassesThrough(t *testing.T) {
	handler := corsHandler(&middleware.CORSConfig{})

	req := httptest.NewRequest("OPTIONS", "/api", http.NoBody)
	req.Header.Set("Origin", "http://app.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected the handler to answer, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// RequestLogger
// ---------------------------------------------------------------------------

func bufferLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithSinks(&logger.Config{}, "test", logger.NewSink(logger.SinkCombined, buf, zerolog.DebugLevel))
}

func TestRequestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	handler := middleware.RequestLogger(bufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/users", http.NoBody))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	out := buf.String()
	if !strings.Contains(out, `"message":"Request completed"`) || !strings.Contains(out, `"status":201`) {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	cases := []struct {
		status int
		level  string
		msg    string
	}{
		{http.StatusNotFound, "info", "Request rejected"},
		{http.StatusServiceUnavailable, "debug", "Request failed"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		handler := middleware.RequestLogger(bufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/x", http.NoBody))

		out := buf.String()
		if !strings.Contains(out, `"level":"`+tc.level+`"`) || !strings.Contains(out, tc.msg) {
			t.Errorf("status %d: unexpected log output %s", tc.status, out)
		}
	}
}

func TestRequestLogger_SkipsHealth(t *testing.T) {
	var buf bytes.Buffer
	called := false
	handler := middleware.RequestLogger(bufferLogger(&buf), "/health")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))

	if !called {
		t.Error("handler should still be called for health endpoints")
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if buf.Len() != 0 {
		t.Errorf("skipped path was logged: %s", buf.String())
	}
}

// ---------------------------------------------------------------------------
// BodySizeLimit
// ---------------------------------------------------------------------------

func TestBodySizeLimit_AppliesLimit(t *testing.T) {
	handler := middleware.BodySizeLimit("1KB")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/upload", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Chain
// ---------------------------------------------------------------------------

func TestChain_Order(t *testing.T) {
	var order []string

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-before")
			next.ServeHTTP(w, r)
			order = append(order, "m1-after")
		})
	}
	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-before")
			next.ServeHTTP(w, r)
			order = append(order, "m2-after")
		})
	}

	chain := middleware.Chain(m1, m2)
	handler := chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))

	expected := []string{"m1-before", "m2-before", "handler", "m2-after", "m1-after"}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %v", len(expected), len(order), order)
	}
	for i, v := range expected {
		if order[i] != v {
			t.Fatalf("position %d: expected %s, got %s (full: %v)", i, v, order[i], order)
		}
	}
}

// ---------------------------------------------------------------------------
// statusWriter Flush support
// ---------------------------------------------------------------------------

type flushRecorder struct {
	http.ResponseWriter
	flushed bool
}

func (f *flushRecorder) Flush() { f.flushed = true }

func TestStatusWriter_Flush(t *testing.T) {
	fr := &flushRecorder{ResponseWriter: httptest.NewRecorder()}

	// statusWriter is internal; RequestLogger wraps the writer with it.
	handler := middleware.RequestLogger(logger.NewDefault("test"))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(fr, httptest.NewRequest("GET", "/stream", http.NoBody))

	if !fr.flushed {
		t.Error("expected Flush to be delegated to underlying writer")
	}
}
