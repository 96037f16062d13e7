package logger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pdiomede/graph-metrics/pkg/httpkit"
)

// responseWriter wraps http.ResponseWriter to capture status code and response size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytesOut   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	size, err := rw.ResponseWriter.Write(b)
	rw.bytesOut += size
	return size, err
}

// NewMiddleware creates HTTP request logging middleware
func NewMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Ensure error tracking context exists (in case httpkit.HandlerFunc wasn't used)
			ctx := httpkit.WithErrorTracking(r.Context())
			r = r.WithContext(ctx)

			// ContentLength is -1 when unknown
			bytesIn := max(0, int(r.ContentLength))

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK, // if WriteHeader is never called
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)

			level := slog.LevelInfo
			if rw.statusCode >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("uri", r.RequestURI),
				slog.Int("status", rw.statusCode),
				slog.Duration("duration", duration),
				slog.Int("bytes_in", bytesIn),
				slog.Int("bytes_out", rw.bytesOut),
			}

			if err := httpkit.Error(r.Context()); err != nil {
				attrs = append(attrs, slog.String("error", errorMessage(err)))
			}

			// Constant message - the structured fields tell the story
			logger.LogAttrs(r.Context(), level, "HTTP", attrs...)
		})
	}
}

// errorMessage extracts the appropriate error message for logging
func errorMessage(err error) string {
	if httpErr, ok := err.(httpkit.HTTPError); ok {
		return httpErr.Cause().Error() // detailed error for logs
	}
	return err.Error()
}
