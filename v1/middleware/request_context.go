package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/treehousetherapy/curelia-health/v1/utils"
)

// RequestContextMiddleware generates a correlation id for every inbound
// request and captures the transport-level context (client IP, user
// agent) the audit ledger attaches verbatim to entries.
func RequestContextMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			meta := utils.RequestMeta{
				RequestID: requestID,
				IPAddress: clientIP(r),
				UserAgent: r.Header.Get("User-Agent"),
			}

			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(utils.SetRequestMeta(r.Context(), meta)))
		})
	}
}

// clientIP resolves the originating address, preferring the first entry
// of X-Forwarded-For when a proxy sits in front.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
