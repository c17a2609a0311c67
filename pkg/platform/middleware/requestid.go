package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"triex/pkg/requestcontext"
)

// RequestID assigns every request a correlation ID, honoring one supplied by
// an upstream proxy. The ID is echoed in the X-Request-ID response header and
// stored in the context for log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
// Deprecated: use requestcontext.RequestID(ctx) instead.
var GetRequestID = requestcontext.RequestID
