package memory

import (
	"context"
	"sort"
	"sync"

	"needlist/internal/domain"
	"needlist/internal/storage"
)

// ItemStore is an in-memory implementation of storage.ItemStore.
type ItemStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WishlistItem // keyed by item ID
}

// NewItemStore creates a new in-memory item store.
func NewItemStore() *ItemStore {
	return &ItemStore{data: make(map[string]*domain.WishlistItem)}
}

// Compile-time interface check.
var _ storage.ItemStore = (*ItemStore)(nil)

// Insert adds an item. Returns ErrDuplicateKey if the ID exists.
func (s *ItemStore) Insert(_ context.Context, item *domain.WishlistItem) error {
	if item == nil || item.ID == "" || item.WishlistID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[item.ID]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *item
	s.data[item.ID] = &cp
	return nil
}

// GetByID retrieves one item. Returns ErrNotFound if not exists.
func (s *ItemStore) GetByID(_ context.Context, itemID string) (*domain.WishlistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.data[itemID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *item
	return &cp, nil
}

// GetByWishlistID retrieves all items on a wishlist, ordered by creation
// time ASC with item ID as tiebreaker.
func (s *ItemStore) GetByWishlistID(_ context.Context, wishlistID string) ([]*domain.WishlistItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.WishlistItem, 0)
	for _, item := range s.data {
		if item.WishlistID == wishlistID {
			cp := *item
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
