package middleware

import (
	"log/slog"
	"net/http"
	"time"

	ctxutil "oficri/mesapartes/internal/infrastructure/context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// responseWriter wraps http.ResponseWriter to capture status code and bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode == 0 {
		rw.statusCode = http.StatusOK
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// RequestLogger logs each request with method, path, status, duration and
// correlation ID, choosing the log level from the status code: Info for
// 2xx/3xx, Warn for 4xx, Error for 5xx. The chi request ID is propagated
// into the context as correlation ID for downstream use.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chimw.GetReqID(r.Context())
			ctx := ctxutil.WithCorrelationID(r.Context(), requestID)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r.WithContext(ctx))

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"status", rw.statusCode,
				"duration_ms", float64(time.Since(start).Nanoseconds()) / 1e6,
				"bytes", rw.bytesWritten,
			}
			if requestID != "" {
				attrs = append(attrs, "correlation_id", requestID)
			}

			switch {
			case rw.statusCode >= 500:
				log.Error("HTTP request", attrs...)
			case rw.statusCode >= 400:
				log.Warn("HTTP request", attrs...)
			default:
				log.Info("HTTP request", attrs...)
			}
		})
	}
}
