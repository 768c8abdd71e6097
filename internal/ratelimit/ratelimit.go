// Package ratelimit provides per-key request rate limiting.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter implements fixed-window rate limiting per key.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    int           // allowed requests per window
	window  time.Duration // window length
	done    chan struct{}
}

type bucket struct {
	remaining int
	resetAt   time.Time
}

// New creates a new Limiter allowing rate requests per window for each key.
func New(rate int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate,
		window:  window,
		done:    make(chan struct{}),
	}

	// Start background cleanup of idle buckets
	go l.cleanup()

	return l
}

// Close stops the background cleanup goroutine.
func (l *Limiter) Close() {
	close(l.done)
}

// Allow checks if a request for the given key is allowed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &bucket{
			remaining: l.rate,
			resetAt:   now.Add(l.window),
		}
		l.buckets[key] = b
	}

	if b.remaining > 0 {
		b.remaining--
		return true
	}
	return false
}

// cleanup periodically removes buckets whose window expired long ago.
func (l *Limiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for key, b := range l.buckets {
				if now.Sub(b.resetAt) > l.window {
					delete(l.buckets, key)
				}
			}
			l.mu.Unlock()
		case <-l.done:
			return
		}
	}
}
