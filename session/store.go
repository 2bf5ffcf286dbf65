package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultTTL           = 24 * time.Hour
	DefaultSweepInterval = 10 * time.Minute
)

type entry struct {
	mu       sync.Mutex
	session  *Session
	lastSeen time.Time
	removed  atomic.Bool
}

// Store keeps sessions in memory keyed by conversation id. Sessions idle for
// longer than the TTL are evicted by Sweep; a TTL of zero disables eviction.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
	onEvict func(id string)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithEvictHook is called after a session is dropped by the sweeper.
func WithEvictHook(fn func(id string)) Option {
	return func(s *Store) {
		s.onEvict = fn
	}
}

func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) load(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		e = &entry{session: New(), lastSeen: s.now()}
		e.session.UpdatedAt = e.lastSeen
		s.entries[id] = e
	}
	return e
}

// Get returns the session for id, creating it on first contact. The returned
// value must not be mutated without holding the lock from Acquire.
func (s *Store) Get(id string) *Session {
	return s.load(id).session
}

// Acquire locks the conversation and returns its session. Transitions for the
// same id are serialized until release is called; other ids are unaffected.
func (s *Store) Acquire(id string) (*Session, func()) {
	for {
		e := s.load(id)
		e.mu.Lock()
		if e.removed.Load() {
			// Reset or evicted while we waited; take the fresh entry.
			e.mu.Unlock()
			continue
		}
		return e.session, func() {
			e.lastSeen = s.now()
			e.session.UpdatedAt = e.lastSeen
			e.mu.Unlock()
		}
	}
}

// Reset drops the session; the next Get or Acquire starts from scratch.
func (s *Store) Reset(id string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		e.removed.Store(true)
		delete(s.entries, id)
	}
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep evicts idle sessions and returns how many were dropped. Sessions in
// the middle of a transition are skipped.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	var evicted []string

	s.mu.Lock()
	for id, e := range s.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.lastSeen.Before(cutoff) {
			e.removed.Store(true)
			delete(s.entries, id)
			evicted = append(evicted, id)
		}
		e.mu.Unlock()
	}
	s.mu.Unlock()

	if s.onEvict != nil {
		for _, id := range evicted {
			s.onEvict(id)
		}
	}
	return len(evicted)
}

// StartSweeper runs Sweep every interval until ctx is done.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		slog.Info("Session sweeper disabled", "ttl", s.ttl, "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval, "ttl", s.ttl)
		for {
			select {
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					slog.Info("Session sweeper evicted idle sessions", "count", n, "remaining", s.Len())
				}
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
