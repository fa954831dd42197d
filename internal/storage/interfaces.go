package storage

import (
	"context"

	"needlist/internal/domain"
)

// WishlistStore provides read access to wishlists. The aggregator only ever
// reads; wishlist writes belong to the rest of the platform.
type WishlistStore interface {
	// GetByID retrieves a wishlist. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, wishlistID string) (*domain.Wishlist, error)
}

// ItemStore provides read access to wishlist items.
type ItemStore interface {
	// GetByID retrieves one item. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, itemID string) (*domain.WishlistItem, error)

	// GetByWishlistID retrieves all items on a wishlist, ordered by
	// creation time ASC. Returns an empty slice for an empty wishlist.
	GetByWishlistID(ctx context.Context, wishlistID string) ([]*domain.WishlistItem, error)
}

// SearchEventStore is the analytics sink for aggregated search requests.
type SearchEventStore interface {
	// Insert records one search event with its per-retailer outcomes.
	Insert(ctx context.Context, e *domain.SearchEvent) error

	// CountSince returns how many searches were recorded at or after ts (ms).
	CountSince(ctx context.Context, ts int64) (int64, error)
}
