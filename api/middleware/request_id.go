package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/get2salam/price-matrix-demo/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"

	// Inbound ids longer than this are replaced, not truncated. Keeps
	// client-chosen values out of log fields unless they look sane.
	maxInboundRequestID = 64
)

// RequestID tags every request with an id, echoes it on the response, and
// binds it to the request's logging context. A well-formed inbound
// X-Request-Id is honored so callers can correlate across services.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := inboundRequestID(r)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func inboundRequestID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(requestIDHeader))
	if id == "" || len(id) > maxInboundRequestID {
		return ""
	}
	return id
}
