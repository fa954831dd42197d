package memory

import (
	"context"
	"sync"

	"needlist/internal/domain"
	"needlist/internal/storage"
)

// SearchEventStore is an in-memory implementation of storage.SearchEventStore.
// The production sink is ClickHouse; this one backs tests and --use-memory.
type SearchEventStore struct {
	mu     sync.RWMutex
	events []*domain.SearchEvent
}

// NewSearchEventStore creates a new in-memory search event store.
func NewSearchEventStore() *SearchEventStore {
	return &SearchEventStore{}
}

// Compile-time interface check.
var _ storage.SearchEventStore = (*SearchEventStore)(nil)

// Insert records one search event.
func (s *SearchEventStore) Insert(_ context.Context, e *domain.SearchEvent) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}

	cp := *e
	cp.Outcomes = append([]domain.RetailerOutcome(nil), e.Outcomes...)

	s.mu.Lock()
	s.events = append(s.events, &cp)
	s.mu.Unlock()
	return nil
}

// CountSince returns how many searches were recorded at or after ts (ms).
func (s *SearchEventStore) CountSince(_ context.Context, ts int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, e := range s.events {
		if e.OccurredAt >= ts {
			n++
		}
	}
	return n, nil
}

// Events returns a copy of everything recorded, newest last. Test helper.
func (s *SearchEventStore) Events() []*domain.SearchEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.SearchEvent, len(s.events))
	for i, e := range s.events {
		cp := *e
		out[i] = &cp
	}
	return out
}
