// Package pricing implements progressive per-item price aggregation: a fast
// wave for the cheap retailers, a slow wave for the metered one, and a merge
// policy that guarantees a later wave can never erase an earlier wave's data.
package pricing

import (
	"sync"

	"needlist/internal/domain"
)

// Map accumulates partial pricing responses per item, tolerant of arbitrary
// arrival order between waves. Merges are field-level unions: a wave that
// carries only the amazon key leaves walmart and target untouched.
type Map struct {
	mu    sync.RWMutex
	items map[string]*domain.ItemPricing
}

// NewMap creates an empty pricing map.
func NewMap() *Map {
	return &Map{items: make(map[string]*domain.ItemPricing)}
}

// Merge unions partial into the item's pricing. Only retailer keys present in
// partial are written; existing keys for other retailers always survive.
func (m *Map) Merge(itemID string, partial *domain.ItemPricing) {
	if partial == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.items[itemID]
	if !ok {
		existing = &domain.ItemPricing{}
		m.items[itemID] = existing
	}
	for _, r := range domain.AllRetailers() {
		if rp := partial.Get(r); rp != nil {
			cp := *rp
			existing.Set(r, &cp)
		}
	}
}

// MergeAll applies a whole wave response at once.
func (m *Map) MergeAll(wave map[string]*domain.ItemPricing) {
	for itemID, partial := range wave {
		m.Merge(itemID, partial)
	}
}

// Get returns a copy of the item's pricing, false if the item has none yet.
func (m *Map) Get(itemID string) (*domain.ItemPricing, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.items[itemID]
	if !ok {
		return nil, false
	}
	return copyPricing(p), true
}

// Complete reports whether every listed item already has a pricing object.
// Used as the idempotence predicate: a progressive fetch over a complete map
// is a no-op.
func (m *Map) Complete(itemIDs []string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range itemIDs {
		if _, ok := m.items[id]; !ok {
			return false
		}
	}
	return true
}

// Snapshot returns a deep copy of the whole map.
func (m *Map) Snapshot() map[string]*domain.ItemPricing {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]*domain.ItemPricing, len(m.items))
	for id, p := range m.items {
		out[id] = copyPricing(p)
	}
	return out
}

func copyPricing(p *domain.ItemPricing) *domain.ItemPricing {
	cp := &domain.ItemPricing{}
	for _, r := range domain.AllRetailers() {
		if rp := p.Get(r); rp != nil {
			v := *rp
			cp.Set(r, &v)
		}
	}
	return cp
}
