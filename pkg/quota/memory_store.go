package quota

import (
	"context"
	"sync"
)

// MemoryStore implements Store in process memory for tests and local
// development without Redis. Counters never expire; the daily window still
// works because DayKey rotates the key itself.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewMemoryStore creates an empty in-memory quota store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]int)}
}

func (s *MemoryStore) Get(ctx context.Context, counterID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[counterID], nil
}

func (s *MemoryStore) Incr(ctx context.Context, counterID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[counterID]++
	return s.counters[counterID], nil
}

func (s *MemoryStore) Set(ctx context.Context, counterID string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[counterID] = value
	return nil
}

func (s *MemoryStore) ResetAll(ctx context.Context, counterIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range counterIDs {
		s.counters[id] = 0
	}
	return nil
}
