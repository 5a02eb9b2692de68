package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// metricsMiddleware records Prometheus metrics for every request. The chi
// response wrapper passes Hijack through, which the websocket upgrade on
// /ws depends on.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(
			r.Method, path, strconv.Itoa(ww.Status()),
		).Inc()

		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// requestLogger logs each request with timing at debug level, errors at
// warn level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			}

			if ww.Status() >= 500 {
				logger.Warn("request failed", attrs...)
			} else {
				logger.Debug("request completed", attrs...)
			}
		})
	}
}

// normalizePath collapses id segments to avoid high-cardinality metric
// labels.
func normalizePath(path string) string {
	const prefix = "/api/events/"
	if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
		rest := path[len(prefix):]
		if strings.HasSuffix(rest, "/sources") {
			return prefix + ":id/sources"
		}
		return prefix + ":id"
	}
	return path
}
