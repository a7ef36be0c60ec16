package persistence

import (
	"context"
	"sync"

	"github.com/petrijr/quizforge/pkg/api"
)

// InMemoryStore is a goroutine-safe RecordStore backed by a map. Records do
// not survive the process.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]api.CacheRecord
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]api.CacheRecord)}
}

var _ RecordStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) Load(ctx context.Context, key string) (api.CacheRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return api.CacheRecord{}, ErrRecordNotFound
	}
	return rec, nil
}

func (s *InMemoryStore) Save(ctx context.Context, key string, rec api.CacheRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = rec
	return nil
}

// Len returns the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *InMemoryStore) Close() error { return nil }
