// Package cache provides fingerprint cache implementations for insight
// results: an in-memory store for single-instance deployments and a
// Redis-backed store for multi-instance ones.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dvloznov/insight-service/internal/insight"
)

type memoryEntry struct {
	result   insight.InsightResult
	storedAt time.Time
}

// MemoryStore is an in-memory implementation of insight.Store. It is safe for
// concurrent use. Entries are dropped lazily on lookup once older than the
// TTL; there is no background sweeper. Data is lost on restart, which is
// acceptable: the cache is a latency optimization, not a system of record.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get implements insight.Store. Expired entries are removed and reported as
// absent.
func (s *MemoryStore) Get(ctx context.Context, fingerprint string) (*insight.InsightResult, bool, error) {
	s.mu.RLock()
	entry, exists := s.entries[fingerprint]
	s.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}

	if s.now().Sub(entry.storedAt) >= s.ttl {
		s.mu.Lock()
		// Re-check under the write lock; a Put may have refreshed the entry.
		if current, ok := s.entries[fingerprint]; ok && s.now().Sub(current.storedAt) >= s.ttl {
			delete(s.entries, fingerprint)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	// Copy to prevent callers from mutating the cached value.
	result := entry.result
	return &result, true, nil
}

// Put implements insight.Store.
func (s *MemoryStore) Put(ctx context.Context, fingerprint string, result *insight.InsightResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[fingerprint] = memoryEntry{
		result:   *result,
		storedAt: s.now(),
	}
	return nil
}

// Invalidate implements insight.Store.
func (s *MemoryStore) Invalidate(ctx context.Context, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, fingerprint)
	return nil
}

// Len reports the number of entries, including ones that have expired but not
// yet been dropped.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure MemoryStore implements the Store interface.
var _ insight.Store = (*MemoryStore)(nil)
