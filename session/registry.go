package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultTTL           = 2 * time.Hour
	defaultEvictInterval = 15 * time.Minute
)

// Registry maps chat ids to sessions and evicts idle ones.
type Registry struct {
	mu       sync.Mutex
	sessions map[int64]*Session

	TTL    time.Duration
	Logger *slog.Logger

	now func() time.Time
}

// NewRegistry builds an empty registry with default eviction settings.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
		TTL:      defaultTTL,
		Logger:   logger,
		now:      time.Now,
	}
}

// Get returns the chat's session, creating it on first use. The
// session is touched on every call.
func (r *Registry) Get(chatID int64) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[chatID]
	if !ok {
		s = newSession(chatID, r.now)
		r.sessions[chatID] = s
	}
	s.Touch()
	return s
}

// Remove drops a session outright.
func (r *Registry) Remove(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, chatID)
}

// Len returns the live session count.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// RunEviction drops idle sessions on an interval until ctx ends.
func (r *Registry) RunEviction(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultEvictInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.evictIdle()
		}
	}
}

func (r *Registry) evictIdle() {
	cutoff := r.now().Add(-r.TTL)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if s.IdleSince().Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	if evicted > 0 && r.Logger != nil {
		r.Logger.Info("sessions_evicted", "count", evicted, "remaining", len(r.sessions))
	}
}
