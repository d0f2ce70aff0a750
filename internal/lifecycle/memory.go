package lifecycle

import (
	"context"
	"sort"
	"sync"

	"rwa-ledger/pkg/sentinel"
)

// In-memory stores keep local deployments and tests lightweight. They
// intentionally favor clarity over performance.

// MemoryRecordStore is a map-backed RecordStore.
type MemoryRecordStore[R any] struct {
	mu      sync.RWMutex
	records map[string]R
}

func NewMemoryRecordStore[R any]() *MemoryRecordStore[R] {
	return &MemoryRecordStore[R]{records: make(map[string]R)}
}

func (s *MemoryRecordStore[R]) Save(_ context.Context, id string, record R) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = record
	return nil
}

func (s *MemoryRecordStore[R]) Find(_ context.Context, id string) (R, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[id]; ok {
		return record, nil
	}
	var zero R
	return zero, sentinel.ErrNotFound
}

func (s *MemoryRecordStore[R]) List(_ context.Context, startAfter string, limit int) ([]Keyed[R], error) {
	limit = ClampLimit(limit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		if id > startAfter {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	page := make([]Keyed[R], 0, len(ids))
	for _, id := range ids {
		page = append(page, Keyed[R]{ID: id, Record: s.records[id]})
	}
	return page, nil
}

// MemoryAggregateStore holds the singleton aggregate for one instance.
type MemoryAggregateStore[A any] struct {
	mu          sync.RWMutex
	aggregate   A
	initialized bool
}

func NewMemoryAggregateStore[A any]() *MemoryAggregateStore[A] {
	return &MemoryAggregateStore[A]{}
}

func (s *MemoryAggregateStore[A]) Load(_ context.Context) (A, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		var zero A
		return zero, sentinel.ErrNotInitialized
	}
	return s.aggregate, nil
}

func (s *MemoryAggregateStore[A]) Save(_ context.Context, aggregate A) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregate = aggregate
	s.initialized = true
	return nil
}
