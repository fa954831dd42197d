package stub

import (
	"context"
	"sync/atomic"
	"time"

	"needlist/internal/domain"
	"needlist/internal/retailer"
)

// StubProvider returns fixed in-memory results for testing.
// Optional Delay and Err simulate slow and broken retailers.
// Implements retailer.SearchProvider interface.
type StubProvider struct {
	retailerID domain.Retailer
	results    []domain.SearchResult
	delay      time.Duration
	err        error
	calls      atomic.Int64
}

// NewStubProvider creates a stub provider with the given canned results.
func NewStubProvider(r domain.Retailer, results []domain.SearchResult) *StubProvider {
	return &StubProvider{retailerID: r, results: results}
}

// WithDelay makes every Search sleep before responding.
func (s *StubProvider) WithDelay(d time.Duration) *StubProvider {
	s.delay = d
	return s
}

// WithError makes every Search fail.
func (s *StubProvider) WithError(err error) *StubProvider {
	s.err = err
	return s
}

// Retailer identifies this provider.
func (s *StubProvider) Retailer() domain.Retailer {
	return s.retailerID
}

// Calls reports how many times Search has been invoked.
func (s *StubProvider) Calls() int64 {
	return s.calls.Load()
}

// Search returns copies of the canned results, honoring delay, error and the
// context deadline.
func (s *StubProvider) Search(ctx context.Context, _ string, opts retailer.SearchOptions) ([]domain.SearchResult, error) {
	s.calls.Add(1)

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 || limit > len(s.results) {
		limit = len(s.results)
	}
	out := make([]domain.SearchResult, limit)
	copy(out, s.results[:limit])
	return out, nil
}

// Compile-time interface check.
var _ retailer.SearchProvider = (*StubProvider)(nil)
