package domain

// Retailer identifies which retail partner produced a search result or price.
type Retailer string

const (
	RetailerAmazon  Retailer = "amazon"
	RetailerWalmart Retailer = "walmart"
	RetailerTarget  Retailer = "target"
)

// String returns the string representation of Retailer.
func (r Retailer) String() string {
	return string(r)
}

// IsValid checks if the retailer is a known value.
func (r Retailer) IsValid() bool {
	return r == RetailerAmazon || r == RetailerWalmart || r == RetailerTarget
}

// AllRetailers lists every supported retailer.
func AllRetailers() []Retailer {
	return []Retailer{RetailerAmazon, RetailerWalmart, RetailerTarget}
}
