package retailer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/google/uuid"

	"needlist/internal/domain"
)

// URL patterns for retailers that do not return a stable product ID.
var (
	amazonASINPattern = regexp.MustCompile(`/(?:dp|gp/product)/([A-Z0-9]{10})`)
	walmartIPPattern  = regexp.MustCompile(`/ip/(?:[^/]+/)?(\d+)`)
	targetTCINPattern = regexp.MustCompile(`/-/A-(\d+)`)
	numericTail       = regexp.MustCompile(`/(\d{6,})(?:[/?#]|$)`)
)

// DeriveProductID returns a stable identifier for a product hit.
//
// Precedence: the retailer-supplied ID, then an ID segment extracted from the
// product URL, then a deterministic hash of retailer and title. Only when the
// title is empty too does it fall back to a random token; that token differs
// across repeated calls for the same product and must not be used as a cache
// or dedup key.
func DeriveProductID(r domain.Retailer, rawID, link, title string) string {
	if rawID != "" {
		return rawID
	}
	if id := extractIDFromURL(r, link); id != "" {
		return id
	}
	if title != "" {
		return hashProductID(r, title)
	}
	return uuid.NewString()
}

// extractIDFromURL pulls the retailer's identifier segment out of a product
// URL, e.g. an ASIN from /dp/..., an item id from /ip/..., a TCIN from /-/A-....
func extractIDFromURL(r domain.Retailer, link string) string {
	if link == "" {
		return ""
	}
	var pattern *regexp.Regexp
	switch r {
	case domain.RetailerAmazon:
		pattern = amazonASINPattern
	case domain.RetailerWalmart:
		pattern = walmartIPPattern
	case domain.RetailerTarget:
		pattern = targetTCINPattern
	default:
		pattern = numericTail
	}
	if m := pattern.FindStringSubmatch(link); len(m) > 1 {
		return m[1]
	}
	if m := numericTail.FindStringSubmatch(link); len(m) > 1 {
		return m[1]
	}
	return ""
}

// hashProductID computes a deterministic fallback ID using SHA256.
// Formula: SHA256(retailer|title), truncated to 16 hex characters.
func hashProductID(r domain.Retailer, title string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", r, title)))
	return hex.EncodeToString(sum[:])[:16]
}
