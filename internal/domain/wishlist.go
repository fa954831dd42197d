package domain

// Wishlist is a needs list owned by one recipient.
// Corresponds to wishlists table in PostgreSQL.
type Wishlist struct {
	ID          string  // PRIMARY KEY, opaque identifier
	OwnerID     string  // recipient user id
	Title       string  // display title
	Description *string // optional long description (nullable)
	ZipCode     string  // location hint forwarded to retailer APIs
	CreatedAt   int64   // Unix timestamp in milliseconds
}

// WishlistItem is one needed item on a wishlist. The aggregator only ever
// reads items; fulfillment writes happen elsewhere in the platform.
// Corresponds to wishlist_items table in PostgreSQL.
type WishlistItem struct {
	ID         string  // PRIMARY KEY
	WishlistID string  // FK to wishlists
	Title      string  // free-text item description used as search query
	Quantity   int     // how many are needed
	Fulfilled  bool    // true once a supporter purchased it
	ProductURL *string // original product link, if the owner pasted one (nullable)
	CreatedAt  int64   // Unix timestamp in milliseconds
}
