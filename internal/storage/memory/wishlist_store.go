package memory

import (
	"context"
	"sync"

	"needlist/internal/domain"
	"needlist/internal/storage"
)

// WishlistStore is an in-memory implementation of storage.WishlistStore.
// Used in tests and in --use-memory mode.
type WishlistStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Wishlist
}

// NewWishlistStore creates a new in-memory wishlist store.
func NewWishlistStore() *WishlistStore {
	return &WishlistStore{data: make(map[string]*domain.Wishlist)}
}

// Compile-time interface check.
var _ storage.WishlistStore = (*WishlistStore)(nil)

// Insert adds a wishlist. Returns ErrDuplicateKey if the ID exists.
// Only the memory store exposes writes; production wishlist writes happen
// outside this service.
func (s *WishlistStore) Insert(_ context.Context, w *domain.Wishlist) error {
	if w == nil || w.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[w.ID]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	cp := *w
	s.data[w.ID] = &cp
	return nil
}

// GetByID retrieves a wishlist by ID. Returns ErrNotFound if not exists.
func (s *WishlistStore) GetByID(_ context.Context, wishlistID string) (*domain.Wishlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.data[wishlistID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	cp := *w
	return &cp, nil
}
