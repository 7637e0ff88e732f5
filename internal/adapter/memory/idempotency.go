package memory

import (
	"context"
	"sync"
	"time"

	portidem "github.com/alanyang/robot-roster/internal/port/idempotency"
)

var _ portidem.Store = (*IdempotencyStore)(nil)

type idempotencyEntry struct {
	record    portidem.Record
	createdAt time.Time
}

// IdempotencyStore keeps replayable responses in process memory. Entries
// older than ttl are treated as absent; Purge reclaims them.
type IdempotencyStore struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]idempotencyEntry
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		ttl:     ttl,
		entries: make(map[string]idempotencyEntry),
	}
}

func (s *IdempotencyStore) Check(_ context.Context, key string) (portidem.Record, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return portidem.Record{}, false, nil
	}
	if s.ttl > 0 && time.Since(entry.createdAt) > s.ttl {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return portidem.Record{}, false, nil
	}
	return entry.record, true, nil
}

// Store keeps the first record written for key.
func (s *IdempotencyStore) Store(_ context.Context, key string, rec portidem.Record) error {
	s.mu.Lock()
	if _, exists := s.entries[key]; !exists {
		s.entries[key] = idempotencyEntry{record: rec, createdAt: time.Now()}
	}
	s.mu.Unlock()
	return nil
}

func (s *IdempotencyStore) Purge(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for key, entry := range s.entries {
		if entry.createdAt.Before(olderThan) {
			delete(s.entries, key)
			n++
		}
	}
	return n, nil
}
