// Package filters provides HTTP filter/middleware implementations for the MCP
// HTTP server.
package filters

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

const (
	// HeaderRequestID carries the request id. An incoming value is kept,
	// otherwise a new one is generated and echoed on the response.
	HeaderRequestID = "X-Request-ID"

	// HeaderSessionID is the MCP session header set by streamable HTTP clients.
	HeaderSessionID = "Mcp-Session-Id"
)

type requestIDKey struct{}

// RequestIDFrom returns the request id stored by WithRequestID.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// WithRequestID returns an HTTP handler that assigns every request an id and
// stores it in the request context.
func WithRequestID(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		ctx := context.WithValue(req.Context(), requestIDKey{}, id)
		handler.ServeHTTP(w, req.WithContext(ctx))
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// WithAccessLog returns an HTTP handler that logs each request once it
// completes. Logged at verbosity 2.
func WithAccessLog(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !klog.V(2).Enabled() {
			handler.ServeHTTP(w, req)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler.ServeHTTP(rec, req)

		requestID, _ := RequestIDFrom(req.Context())
		klog.V(2).InfoS("HTTP request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"requestID", requestID,
			"session", req.Header.Get(HeaderSessionID),
		)
	})
}
