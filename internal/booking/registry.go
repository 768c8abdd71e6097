package booking

import (
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("booking session not found")

// Registry holds active booking sessions in memory with a sliding TTL.
//
// The engine itself is single-threaded; the registry is the only concurrency
// boundary. All access to one session goes through With, which serializes
// callers on a per-session mutex, so handler goroutines never observe a
// traveler list mid-mutation.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*registryEntry
	ttl      time.Duration
	done     chan struct{}
}

type registryEntry struct {
	mu        sync.Mutex
	session   *Session
	expiresAt time.Time
}

// NewRegistry creates a Registry whose sessions expire after ttl of
// inactivity.
func NewRegistry(ttl time.Duration) *Registry {
	r := &Registry{
		sessions: make(map[string]*registryEntry),
		ttl:      ttl,
		done:     make(chan struct{}),
	}

	// Start background sweep of expired sessions
	go r.sweep()

	return r
}

// Close stops the background sweep goroutine.
func (r *Registry) Close() {
	close(r.done)
}

// Put registers a session.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = &registryEntry{
		session:   s,
		expiresAt: time.Now().Add(r.ttl),
	}
	r.mu.Unlock()
}

// With runs fn with exclusive access to the session, extending its TTL.
// Returns ErrSessionNotFound for unknown or expired IDs.
func (r *Registry) With(id string, fn func(*Session) error) error {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if ok && time.Now().After(entry.expiresAt) {
		delete(r.sessions, id)
		ok = false
	}
	if !ok {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	entry.expiresAt = time.Now().Add(r.ttl)
	r.mu.Unlock()

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// Remove drops a session, typically after a confirmed submission.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// sweep periodically removes expired sessions.
func (r *Registry) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			now := time.Now()
			for id, entry := range r.sessions {
				if now.After(entry.expiresAt) {
					delete(r.sessions, id)
				}
			}
			r.mu.Unlock()
		case <-r.done:
			return
		}
	}
}
