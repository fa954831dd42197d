package domain

// RetailerPrice is one retailer's live offer for a wishlist item.
type RetailerPrice struct {
	Available bool   `json:"available"`
	Price     string `json:"price,omitempty"` // display string, e.g. "$15.50"
	Link      string `json:"link,omitempty"`
	ImageURL  string `json:"image,omitempty"`
}

// ItemPricing holds per-retailer offers for one item. Keys are filled in
// incrementally as pricing waves arrive; a nil entry means that retailer has
// not reported yet.
type ItemPricing struct {
	Amazon  *RetailerPrice `json:"amazon,omitempty"`
	Walmart *RetailerPrice `json:"walmart,omitempty"`
	Target  *RetailerPrice `json:"target,omitempty"`
}

// Get returns the offer for a retailer, nil if absent.
func (p *ItemPricing) Get(r Retailer) *RetailerPrice {
	switch r {
	case RetailerAmazon:
		return p.Amazon
	case RetailerWalmart:
		return p.Walmart
	case RetailerTarget:
		return p.Target
	}
	return nil
}

// Set stores the offer for a retailer, replacing only that retailer's key.
func (p *ItemPricing) Set(r Retailer, rp *RetailerPrice) {
	switch r {
	case RetailerAmazon:
		p.Amazon = rp
	case RetailerWalmart:
		p.Walmart = rp
	case RetailerTarget:
		p.Target = rp
	}
}
