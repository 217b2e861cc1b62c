package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// requestID tags every request with an X-Request-ID header, generating one
// when the client did not supply it, and logs start and completion.
func requestID(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = uuid.New().String()
			}
			w.Header().Set("X-Request-ID", id)

			wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(wrapped, r)

			fields := []any{
				"requestId", id,
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.status,
				"durationMs", time.Since(start).Milliseconds(),
			}
			if wrapped.status >= 400 {
				logger.Error("request failed", fields...)
			} else {
				logger.Debug("request completed", fields...)
			}
		})
	}
}

// statusWriter captures the response status for logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
