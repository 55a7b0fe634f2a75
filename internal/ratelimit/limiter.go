package ratelimit

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// Result is the outcome of a single Check call. RetryAfter is zero when the
// request is allowed, otherwise the time remaining in the current window.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a fixed-window request counter keyed by client identity.
// Each key gets an independent window; expired windows are reset lazily on
// the next Check, so no background sweeper is needed for correctness.
type Limiter struct {
	maxAttempts int
	window      time.Duration

	mu      sync.Mutex
	store   map[string]*entry
	cleanup time.Time

	now func() time.Time
}

func New(maxAttempts int, window time.Duration) *Limiter {
	return &Limiter{
		maxAttempts: maxAttempts,
		window:      window,
		store:       make(map[string]*entry),
		cleanup:     time.Now().Add(time.Minute),
		now:         time.Now,
	}
}

// Check records an attempt for key and reports whether it is allowed.
// It never fails: limiter internals must not take auth endpoints down.
func (l *Limiter) Check(key string) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Reclaim expired entries once a minute. Memory hygiene only; expiry is
	// checked on every access below.
	if now.After(l.cleanup) {
		for k, e := range l.store {
			if !now.Before(e.resetAt) {
				delete(l.store, k)
			}
		}
		l.cleanup = now.Add(time.Minute)
	}

	e, ok := l.store[key]
	if !ok || !now.Before(e.resetAt) {
		l.store[key] = &entry{count: 1, resetAt: now.Add(l.window)}
		return Result{Allowed: true, Remaining: l.maxAttempts - 1}
	}

	if e.count < l.maxAttempts {
		e.count++
		return Result{Allowed: true, Remaining: l.maxAttempts - e.count}
	}

	return Result{Allowed: false, Remaining: 0, RetryAfter: e.resetAt.Sub(now)}
}

// ClientIP derives a stable rate-limit key from request headers: the first
// X-Forwarded-For hop, then X-Real-IP. Requests with neither share a single
// "unknown" bucket rather than being rejected.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return "unknown"
}
