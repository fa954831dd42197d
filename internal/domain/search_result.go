package domain

// SearchResult is a single normalized product hit from one retailer.
// Results are created per request and never persisted; Retailer is always
// stamped by the adapter that produced the hit, never inferred later.
type SearchResult struct {
	ProductID    string   `json:"product_id"`
	Title        string   `json:"title"`
	Price        string   `json:"price"` // display string, e.g. "$19.99" or "Price varies"
	ImageURL     string   `json:"image_url,omitempty"`
	Link         string   `json:"link"`
	Retailer     Retailer `json:"retailer"`
	Rating       *float64 `json:"rating,omitempty"`
	RatingsCount *int     `json:"ratings_count,omitempty"`
}
