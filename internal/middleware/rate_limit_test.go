package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"networth/internal/ratelimit"
)

func TestRetryAfterSecondsRoundsUp(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{1500 * time.Millisecond, 2},
		{30 * time.Second, 30},
		{time.Millisecond, 1},
		{0, 0},
	}
	for _, c := range cases {
		if got := retryAfterSeconds(c.d); got != c.want {
			t.Errorf("retryAfterSeconds(%v) = %d, want %d", c.d, got, c.want)
		}
	}
}

func TestRateLimitDeniesWithHeaderAndBody(t *testing.T) {
	limiter := ratelimit.New(1, time.Hour)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "5.6.7.8")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("first call: got %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second call: got %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["error"] != rateLimitedMessage {
		t.Fatalf("body = %v", body)
	}
}

func TestRateLimitSeparateClientsUnaffected(t *testing.T) {
	limiter := ratelimit.New(1, time.Hour)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodPost, "/", nil)
	first.Header.Set("X-Real-IP", "1.1.1.1")
	second := httptest.NewRequest(http.MethodPost, "/", nil)
	second.Header.Set("X-Real-IP", "2.2.2.2")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, first)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("first client should be limited, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, second)
	if w.Code != http.StatusOK {
		t.Fatalf("second client must be independent, got %d", w.Code)
	}
}
