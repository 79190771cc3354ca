package middleware

import (
	"context"
	"net/http"
	"time"
)

// RequestDeadline bounds the request context so provider fan-out finishes
// before the server write timeout. A non-positive d leaves requests unbounded.
func RequestDeadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
