package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 3})
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("alice") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("alice") {
		t.Fatal("4th request within the window should be denied")
	}
	if !l.Allow("bob") {
		t.Fatal("other callers must not share the window")
	}
}

func TestWindowReset(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1})
	defer l.Stop()

	if !l.Allow("alice") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("alice") {
		t.Fatal("second request should be denied")
	}

	// Age the window past a minute.
	l.mu.Lock()
	l.callers["alice"].windowStart = time.Now().Add(-2 * time.Minute)
	l.mu.Unlock()

	if !l.Allow("alice") {
		t.Fatal("request after window reset should be allowed")
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 10})
	defer l.Stop()

	l.Allow("alice")
	l.Allow("bob")

	l.mu.Lock()
	l.callers["alice"].windowStart = time.Now().Add(-15 * time.Minute)
	l.mu.Unlock()

	l.cleanupStaleEntries()

	if got := l.ActiveCallers(); got != 1 {
		t.Fatalf("expected 1 tracked caller after cleanup, got %d", got)
	}
}

func TestMiddleware(t *testing.T) {
	l := NewLimiter(Config{RequestsPerMinute: 1})
	defer l.Stop()

	handler := l.Middleware(func(r *http.Request) string {
		return r.Header.Get("X-Auth-User")
	}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Auth-User", "alice")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatal("expected Retry-After header")
	}
}
