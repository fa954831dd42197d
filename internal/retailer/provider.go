// Package retailer contains the per-retailer product search adapters.
// Each adapter calls one third-party search API and normalizes its response
// into domain.SearchResult; raw third-party shapes never leave this package.
package retailer

import (
	"context"

	"needlist/internal/domain"
)

// SearchOptions carries the per-request knobs forwarded to retailer APIs.
type SearchOptions struct {
	ZipCode string // location hint required by some retailer APIs
	Limit   int    // result-count cap; 0 means provider default
}

// SearchProvider is a product search adapter for a single retailer.
// Implementations issue exactly one outbound HTTP call per invocation and
// return a normalized best-effort result list. Transport and decode errors
// are returned to the caller; the aggregator converts them to empty results.
type SearchProvider interface {
	// Retailer identifies which retailer this provider queries.
	Retailer() domain.Retailer

	// Search returns normalized results for a free-text query.
	Search(ctx context.Context, query string, opts SearchOptions) ([]domain.SearchResult, error)
}
