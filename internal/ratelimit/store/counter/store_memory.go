package counter

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded fixed-window counter for single-instance
// deployments and tests. All increments for a key are serialized, so
// concurrent requests from the same identity cannot lose updates.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	timeNow func() time.Time
}

type entry struct {
	count     int64
	expiresAt time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithTimeNow replaces the clock. Tests use this to cross window boundaries
// without sleeping.
func WithTimeNow(now func() time.Time) Option {
	return func(s *MemoryStore) {
		s.timeNow = now
	}
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		timeNow: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Incr increments the counter for key, starting a fresh window when the key
// is absent or its window has elapsed. The expiry of a live window is never
// extended.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.timeNow()

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key]
	if e == nil || !e.expiresAt.After(now) {
		e = &entry{count: 0, expiresAt: now.Add(window)}
		s.entries[key] = e
	}
	e.count++
	return e.count, e.expiresAt.Sub(now), nil
}

// Peek returns the current count and residual TTL, or zeros when absent/expired.
func (s *MemoryStore) Peek(_ context.Context, key string) (int64, time.Duration, error) {
	now := s.timeNow()

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key]
	if e == nil || !e.expiresAt.After(now) {
		return 0, 0, nil
	}
	return e.count, e.expiresAt.Sub(now), nil
}

// Reset clears the counter for a key.
func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Cleanup drops expired entries. Expiry is already handled lazily on read;
// this only bounds memory for identities that never return.
func (s *MemoryStore) Cleanup() {
	now := s.timeNow()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, e := range s.entries {
		if !e.expiresAt.After(now) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor runs Cleanup every interval until the context is cancelled.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
