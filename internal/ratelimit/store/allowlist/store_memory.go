package allowlist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"limitgate/internal/ratelimit/models"
)

// MemoryStore keeps allowlist entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*models.AllowlistEntry // keyed by identifier
}

// NewMemoryStore creates an empty in-memory allowlist.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*models.AllowlistEntry)}
}

// IsAllowlisted checks if an identifier should bypass rate limiting.
// Expired entries are dropped lazily here rather than by a sweeper.
func (s *MemoryStore) IsAllowlisted(_ context.Context, identifier string) (bool, error) {
	if identifier == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[identifier]
	if !ok {
		return false, nil
	}
	if e.IsExpired(time.Now()) {
		delete(s.entries, identifier)
		return false, nil
	}
	return true, nil
}

// Add creates or replaces an entry.
func (s *MemoryStore) Add(_ context.Context, entry *models.AllowlistEntry) error {
	if entry == nil {
		return fmt.Errorf("allowlist entry is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Identifier] = entry
	return nil
}

// Remove deletes an entry by type and identifier.
func (s *MemoryStore) Remove(_ context.Context, entryType models.AllowlistEntryType, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[identifier]; ok && e.Type == entryType {
		delete(s.entries, identifier)
	}
	return nil
}

// List returns all non-expired entries.
func (s *MemoryStore) List(_ context.Context) ([]*models.AllowlistEntry, error) {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.AllowlistEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.IsExpired(now) {
			out = append(out, e)
		}
	}
	return out, nil
}
