package cases

import (
	"context"
	"sync"

	"veridoc/pkg/platform/sentinel"
)

// MemoryStore keeps case records in memory. Suitable for tests and
// single-instance development runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	order   []string // case IDs, oldest first
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Save(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; !exists {
		s.order = append(s.order, record.ID)
	}
	s.records[record.ID] = record
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return Record{}, sentinel.ErrNotFound
	}
	return record, nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}
	records := make([]Record, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(records) < limit; i-- {
		records = append(records, s.records[s.order[i]])
	}
	return records, nil
}
