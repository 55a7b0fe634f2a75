package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"networth/internal/ratelimit"
)

const rateLimitedMessage = "Too many attempts. Please try again later."

// RateLimit gates a route behind a fixed-window limiter keyed by client IP.
// Denials carry a Retry-After header in whole seconds, rounded up.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Check(ratelimit.ClientIP(r))
			if !res.Allowed {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(res.RetryAfter)))
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": rateLimitedMessage})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
