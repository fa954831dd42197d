package pricing

import (
	"needlist/internal/domain"
	"needlist/internal/retailer"
)

// BestPrice returns the lowest price among retailers marked available with a
// parseable price, formatted to two decimals. The second return is false when
// no retailer qualifies; callers render a "price not available" placeholder,
// never zero. An unavailable retailer's lower price is ignored.
func BestPrice(p *domain.ItemPricing) (string, bool) {
	if p == nil {
		return "", false
	}

	best := 0.0
	found := false
	for _, r := range domain.AllRetailers() {
		rp := p.Get(r)
		if rp == nil || !rp.Available || rp.Price == "" {
			continue
		}
		value, ok := retailer.ParsePriceValue(rp.Price)
		if !ok {
			continue
		}
		if !found || value < best {
			best = value
			found = true
		}
	}
	if !found {
		return "", false
	}
	return retailer.FormatUSD(best), true
}
