package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"needlist/internal/domain"
	"needlist/internal/storage"
)

// ItemStore implements storage.ItemStore using PostgreSQL.
type ItemStore struct {
	pool *Pool
}

// NewItemStore creates a new ItemStore.
func NewItemStore(pool *Pool) *ItemStore {
	return &ItemStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ItemStore = (*ItemStore)(nil)

// GetByID retrieves one item. Returns ErrNotFound if not exists.
func (s *ItemStore) GetByID(ctx context.Context, itemID string) (*domain.WishlistItem, error) {
	query := `
		SELECT item_id, wishlist_id, title, quantity, fulfilled, product_url, created_at
		FROM wishlist_items
		WHERE item_id = $1
	`

	row := s.pool.QueryRow(ctx, query, itemID)
	item, err := scanItem(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get item by id: %w", err)
	}
	return item, nil
}

// GetByWishlistID retrieves all items on a wishlist, ordered by creation
// time ASC with item_id as tiebreaker.
func (s *ItemStore) GetByWishlistID(ctx context.Context, wishlistID string) ([]*domain.WishlistItem, error) {
	query := `
		SELECT item_id, wishlist_id, title, quantity, fulfilled, product_url, created_at
		FROM wishlist_items
		WHERE wishlist_id = $1
		ORDER BY created_at ASC, item_id ASC
	`

	rows, err := s.pool.Query(ctx, query, wishlistID)
	if err != nil {
		return nil, fmt.Errorf("get items by wishlist: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.WishlistItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}

// scanItem scans one wishlist_items row.
func scanItem(row pgx.Row) (*domain.WishlistItem, error) {
	var item domain.WishlistItem
	err := row.Scan(
		&item.ID,
		&item.WishlistID,
		&item.Title,
		&item.Quantity,
		&item.Fulfilled,
		&item.ProductURL,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
