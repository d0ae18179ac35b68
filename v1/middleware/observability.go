package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/treehousetherapy/curelia-health/v1/metrics"
	"github.com/treehousetherapy/curelia-health/v1/utils"
)

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// ObservabilityMiddleware emits one structured access-log line per
// request and feeds the request-duration histogram. It sits inside
// RequestContextMiddleware so the log line carries the correlation id.
func ObservabilityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, strconv.Itoa(rec.status)).
			Observe(duration.Seconds())

		meta := utils.GetRequestMeta(r.Context())
		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"durationMs", duration.Milliseconds(),
			"requestId", meta.RequestID,
			"ip", meta.IPAddress,
		)
	})
}
