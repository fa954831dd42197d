// Package ratelimit wraps the metered retailer adapter with request spacing
// and a response cache. The other adapters are cheap enough to call directly;
// only the billed one goes through here.
package ratelimit

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"

	"needlist/internal/cache"
	"needlist/internal/domain"
	"needlist/internal/observability"
	"needlist/internal/retailer"
)

// DefaultMinInterval is the minimum spacing between outbound calls to the
// wrapped adapter, process-wide.
const DefaultMinInterval = 1000 * time.Millisecond

// CachedProvider decorates one retailer.SearchProvider with a TTL cache and a
// single shared rate limiter. Cache hits bypass both the limiter and the
// network. The limiter is owned by the instance, not package state, so two
// wrappers never interfere.
type CachedProvider struct {
	inner   retailer.SearchProvider
	cache   *cache.SearchCache
	limiter *rate.Limiter
	logger  *log.Logger
	metrics *observability.Metrics
}

// Options configures a CachedProvider.
type Options struct {
	TTL         time.Duration // cache TTL; 0 uses cache.DefaultTTL
	MinInterval time.Duration // spacing between outbound calls; 0 uses DefaultMinInterval
	Logger      *log.Logger
	Metrics     *observability.Metrics // optional
}

// NewCachedProvider wraps inner with caching and rate limiting.
func NewCachedProvider(inner retailer.SearchProvider, opts Options) *CachedProvider {
	minInterval := opts.MinInterval
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &CachedProvider{
		inner: inner,
		cache: cache.NewSearchCache(opts.TTL),
		// Burst 1: the first call goes immediately, every subsequent call
		// waits out the full interval. Wait is atomic, so two concurrent
		// callers cannot both slip through a stale window.
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Compile-time interface check.
var _ retailer.SearchProvider = (*CachedProvider)(nil)

// Retailer identifies the wrapped provider.
func (p *CachedProvider) Retailer() domain.Retailer {
	return p.inner.Retailer()
}

// Search serves from cache when possible, otherwise waits for a limiter slot
// and calls through. Results are cached even when empty; an error is never
// cached.
func (p *CachedProvider) Search(ctx context.Context, query string, opts retailer.SearchOptions) ([]domain.SearchResult, error) {
	key := cache.Key(query, opts.ZipCode, opts.Limit)

	if results, ok := p.cache.Get(key); ok {
		p.logger.Printf("[%s] cache hit for %q", p.inner.Retailer(), query)
		if p.metrics != nil {
			p.metrics.CacheHits.Inc()
		}
		return results, nil
	}
	if p.metrics != nil {
		p.metrics.CacheMisses.Inc()
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	results, err := p.inner.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, results)
	return results, nil
}
