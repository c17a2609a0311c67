package middleware

import (
	"net/http"
	"time"

	"triex/pkg/requestcontext"
)

// RequestTime captures the current time at the start of the request and
// stores it in the context. All operations within one request observe the
// same "now": the status classifier, audit timestamps, and archived_at
// stamps stay consistent even when a handler touches several entities.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
