package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds each request's context. The frontend this API replaced had
// no timeout at all and a stalled call left the screen loading forever; here
// a stalled store call is cancelled and surfaces as an error instead.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContentTypeJSON sets the JSON content type on every response up front so
// handlers only worry about payloads.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
