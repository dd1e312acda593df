// Package ratelimit implements a fixed-window request limiter keyed
// by caller identity. The API sits behind an authenticating proxy, so
// the key is the authenticated username when present and the client
// address otherwise.
package ratelimit

import (
	"net/http"
	"sync"
	"time"
)

// Limiter tracks request counts per caller.
type Limiter struct {
	mu          sync.Mutex
	callers     map[string]*callerInfo
	stopCleanup chan struct{}
	stopOnce    sync.Once

	requestsPerMinute int
	cleanupInterval   time.Duration
}

type callerInfo struct {
	windowStart time.Time
	requests    int
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 120,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter creates a new rate limiter
func NewLimiter(config Config) *Limiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}

	l := &Limiter{
		callers:           make(map[string]*callerInfo),
		stopCleanup:       make(chan struct{}),
		requestsPerMinute: config.RequestsPerMinute,
		cleanupInterval:   config.CleanupInterval,
	}
	go l.startCleanup()
	return l
}

// Allow checks if a request from the given caller should be allowed
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	caller, exists := l.callers[key]

	if !exists || now.Sub(caller.windowStart) > time.Minute {
		l.callers[key] = &callerInfo{windowStart: now, requests: 1}
		return true
	}

	caller.requests++
	return caller.requests <= l.requestsPerMinute
}

func (l *Limiter) startCleanup() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanupStaleEntries()
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes callers idle for more than 10 minutes
func (l *Limiter) cleanupStaleEntries() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for key, caller := range l.callers {
		if caller.windowStart.Before(cutoff) {
			delete(l.callers, key)
		}
	}
}

// ActiveCallers returns the number of currently tracked callers
func (l *Limiter) ActiveCallers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.callers)
}

// Stop shuts down the cleanup goroutine
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCleanup)
	})
}

// Middleware creates HTTP middleware for rate limiting
func (l *Limiter) Middleware(extractKey func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(extractKey(r)) {
				if onLimit != nil {
					onLimit(w, r)
					return
				}
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
