package postgres

import (
	"context"
	"fmt"

	"needlist/internal/domain"
	"needlist/internal/storage"
)

// WishlistStore implements storage.WishlistStore using PostgreSQL.
// The aggregator is a read-only consumer of the platform's wishlist schema.
type WishlistStore struct {
	pool *Pool
}

// NewWishlistStore creates a new WishlistStore.
func NewWishlistStore(pool *Pool) *WishlistStore {
	return &WishlistStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WishlistStore = (*WishlistStore)(nil)

// GetByID retrieves a wishlist by ID. Returns ErrNotFound if not exists.
func (s *WishlistStore) GetByID(ctx context.Context, wishlistID string) (*domain.Wishlist, error) {
	query := `
		SELECT wishlist_id, owner_id, title, description, zip_code, created_at
		FROM wishlists
		WHERE wishlist_id = $1
	`

	var w domain.Wishlist
	err := s.pool.QueryRow(ctx, query, wishlistID).Scan(
		&w.ID,
		&w.OwnerID,
		&w.Title,
		&w.Description,
		&w.ZipCode,
		&w.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wishlist by id: %w", err)
	}
	return &w, nil
}
