package pricing

import (
	"context"
	"log"
	"sync"
	"time"

	"needlist/internal/domain"
	"needlist/internal/observability"
	"needlist/internal/retailer"
)

// Wave timeouts keep the fast/slow asymmetry of the search aggregator: the
// cheap retailers answer quickly, the metered one does not.
const (
	DefaultFastWaveTimeout = 3 * time.Second
	DefaultSlowWaveTimeout = 8 * time.Second
)

// Wave labels for metrics and stream updates.
const (
	WaveFast = "fast"
	WaveSlow = "slow"
)

// Service fetches live per-item pricing from the retailer adapters.
// The fast providers are queried directly; the slow provider is expected to
// be the rate-limited cached wrapper so batch loops cannot burst the metered
// API.
type Service struct {
	fast        []retailer.SearchProvider
	slow        retailer.SearchProvider
	fastTimeout time.Duration
	slowTimeout time.Duration
	zipCode     string
	logger      *log.Logger
	metrics     *observability.Metrics
}

// ServiceOptions configures a pricing Service.
type ServiceOptions struct {
	FastProviders []retailer.SearchProvider // typically walmart + target
	SlowProvider  retailer.SearchProvider   // amazon behind the ratelimit wrapper
	FastTimeout   time.Duration             // 0 uses DefaultFastWaveTimeout
	SlowTimeout   time.Duration             // 0 uses DefaultSlowWaveTimeout
	ZipCode       string
	Logger        *log.Logger
	Metrics       *observability.Metrics // optional
}

// NewService creates a pricing service.
func NewService(opts ServiceOptions) *Service {
	fastTimeout := opts.FastTimeout
	if fastTimeout <= 0 {
		fastTimeout = DefaultFastWaveTimeout
	}
	slowTimeout := opts.SlowTimeout
	if slowTimeout <= 0 {
		slowTimeout = DefaultSlowWaveTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		fast:        opts.FastProviders,
		slow:        opts.SlowProvider,
		fastTimeout: fastTimeout,
		slowTimeout: slowTimeout,
		zipCode:     opts.ZipCode,
		logger:      logger,
		metrics:     opts.Metrics,
	}
}

// FastWave prices all items against the fast retailers in one batch.
// The returned map carries only the fast retailers' keys. An item a retailer
// could not price gets an explicit unavailable entry, so re-fetch loops
// terminate. The error is non-nil only when the whole wave was cut short by
// the context.
func (s *Service) FastWave(ctx context.Context, items []domain.WishlistItem) (map[string]*domain.ItemPricing, error) {
	return s.wave(ctx, WaveFast, items, s.fast, s.fastTimeout)
}

// SlowWave prices all items against the slow retailer in one batch.
// The returned map carries only that retailer's key.
func (s *Service) SlowWave(ctx context.Context, items []domain.WishlistItem) (map[string]*domain.ItemPricing, error) {
	if s.slow == nil {
		return map[string]*domain.ItemPricing{}, nil
	}
	return s.wave(ctx, WaveSlow, items, []retailer.SearchProvider{s.slow}, s.slowTimeout)
}

// wave runs one batched pricing pass: every (item, provider) pair is fetched
// concurrently under the wave deadline, failures degrade to unavailable
// entries.
func (s *Service) wave(ctx context.Context, label string, items []domain.WishlistItem, providers []retailer.SearchProvider, timeout time.Duration) (map[string]*domain.ItemPricing, error) {
	start := time.Now()
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out := make(map[string]*domain.ItemPricing, len(items))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, item := range items {
		for _, p := range providers {
			wg.Add(1)
			go func(item domain.WishlistItem, p retailer.SearchProvider) {
				defer wg.Done()
				rp := s.priceOne(wctx, p, item)

				mu.Lock()
				defer mu.Unlock()
				entry, ok := out[item.ID]
				if !ok {
					entry = &domain.ItemPricing{}
					out[item.ID] = entry
				}
				entry.Set(p.Retailer(), rp)
			}(item, p)
		}
	}
	wg.Wait()

	if s.metrics != nil {
		s.metrics.PricingWaveDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}

	// The parent context expiring is a wave failure; the wave's own deadline
	// lapsing is expected degradation.
	if err := ctx.Err(); err != nil {
		return out, err
	}
	return out, nil
}

// priceOne asks one provider for one item's top match. Any failure, a
// timeout included, yields an unavailable entry rather than an error.
func (s *Service) priceOne(ctx context.Context, p retailer.SearchProvider, item domain.WishlistItem) *domain.RetailerPrice {
	results, err := p.Search(ctx, item.Title, retailer.SearchOptions{ZipCode: s.zipCode, Limit: 1})
	if err != nil {
		s.logger.Printf("[pricing] %s price for item %s: %v", p.Retailer(), item.ID, err)
		return &domain.RetailerPrice{Available: false}
	}
	if len(results) == 0 {
		return &domain.RetailerPrice{Available: false}
	}

	top := results[0]
	if _, ok := retailer.ParsePriceValue(top.Price); !ok {
		return &domain.RetailerPrice{Available: false, Link: top.Link, ImageURL: top.ImageURL}
	}
	if s.metrics != nil {
		s.metrics.ItemsPriced.Inc()
	}
	return &domain.RetailerPrice{
		Available: true,
		Price:     top.Price,
		Link:      top.Link,
		ImageURL:  top.ImageURL,
	}
}

// PriceItem fetches a single item's pricing across every configured retailer.
// Used by the per-item fallback endpoint; each retailer is independently
// best-effort.
func (s *Service) PriceItem(ctx context.Context, item domain.WishlistItem) *domain.ItemPricing {
	providers := make([]retailer.SearchProvider, 0, len(s.fast)+1)
	providers = append(providers, s.fast...)
	if s.slow != nil {
		providers = append(providers, s.slow)
	}

	entry := &domain.ItemPricing{}
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range providers {
		timeout := s.fastTimeout
		if s.slow != nil && p.Retailer() == s.slow.Retailer() {
			timeout = s.slowTimeout
		}
		wg.Add(1)
		go func(p retailer.SearchProvider, timeout time.Duration) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			rp := s.priceOne(pctx, p, item)

			mu.Lock()
			entry.Set(p.Retailer(), rp)
			mu.Unlock()
		}(p, timeout)
	}
	wg.Wait()
	return entry
}

// FetchProgressive populates m for the given items in two waves: the fast
// retailers first, then the slow one. The waves only order their initiation;
// completion order is irrelevant because merges are non-destructive. onWave,
// if set, fires after each wave has been merged.
//
// If the map already covers every item the fetch is skipped entirely and no
// outbound request is issued. If a wave fails outright, items still missing
// pricing are re-fetched individually, each best-effort.
func (s *Service) FetchProgressive(ctx context.Context, items []domain.WishlistItem, m *Map, onWave func(wave string)) error {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	if m.Complete(ids) {
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(2)

	// Wave 1: fast retailers.
	go func() {
		defer wg.Done()
		wave, err := s.FastWave(ctx, items)
		m.MergeAll(wave)
		if err != nil {
			s.fallback(ctx, items, m)
		}
		if onWave != nil {
			onWave(WaveFast)
		}
	}()

	// Wave 2: the slow retailer, initiated after wave 1 but not waiting on it.
	go func() {
		defer wg.Done()
		wave, err := s.SlowWave(ctx, items)
		m.MergeAll(wave)
		if err != nil {
			s.fallback(ctx, items, m)
		}
		if onWave != nil {
			onWave(WaveSlow)
		}
	}()

	wg.Wait()
	return ctx.Err()
}

// fallback fetches items that still have no pricing one at a time,
// sequentially, each independently best-effort.
func (s *Service) fallback(ctx context.Context, items []domain.WishlistItem, m *Map) {
	if s.metrics != nil {
		s.metrics.PricingFallbacks.Inc()
	}
	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		if _, ok := m.Get(item.ID); ok {
			continue
		}
		m.Merge(item.ID, s.PriceItem(ctx, item))
	}
}
