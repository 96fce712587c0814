package store

import (
	"context"
	"sync"
)

// DefaultMaxRecords bounds a MemoryStore created with a non-positive limit.
const DefaultMaxRecords = 10000

// MemoryStore keeps the most recent records in memory. Once it holds its
// limit, each new record evicts the oldest one. Records are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	limit   int
	records map[string]Record
	order   []string // insertion order, oldest first
}

// NewMemoryStore creates an empty MemoryStore holding at most maxRecords
// records; maxRecords <= 0 selects DefaultMaxRecords.
func NewMemoryStore(maxRecords int) *MemoryStore {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &MemoryStore{limit: maxRecords, records: make(map[string]Record)}
}

// Put stores rec. A record with an existing ID is replaced in place and
// keeps its age.
func (s *MemoryStore) Put(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.ID]; ok {
		s.records[rec.ID] = rec
		return nil
	}
	for len(s.order) >= s.limit {
		delete(s.records, s.order[0])
		s.order = s.order[1:]
	}
	s.records[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return nil
}

// Get returns the record with the given ID or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close does nothing.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
