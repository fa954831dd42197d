// Package search implements the parallel multi-retailer product search
// aggregator: concurrent fan-out with per-retailer timeouts, partial-failure
// tolerance, shuffled merge and a hard result cap.
package search

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"needlist/internal/domain"
	"needlist/internal/observability"
	"needlist/internal/retailer"
)

// Default aggregator tuning. Fast and slow timeouts are asymmetric on
// purpose: the SerpAPI-backed retailers answer in a second or two, the
// Rainforest one routinely takes five or more.
const (
	DefaultFastTimeout = 3 * time.Second
	DefaultSlowTimeout = 8 * time.Second
	DefaultMaxResults  = 60
)

// EventRecorder receives one analytics record per aggregated search.
// Implementations must tolerate being called concurrently.
type EventRecorder interface {
	RecordSearch(ctx context.Context, e *domain.SearchEvent) error
}

// ProviderConfig binds a retailer provider to its fan-out timeout.
type ProviderConfig struct {
	Provider retailer.SearchProvider
	Timeout  time.Duration
}

// Aggregator fans a query out to every configured retailer concurrently and
// merges whatever comes back in time. A broken or slow retailer contributes
// zero results; it can never fail the request.
type Aggregator struct {
	providers  []ProviderConfig
	maxResults int
	zipCode    string
	logger     *log.Logger
	metrics    *observability.Metrics
	recorder   EventRecorder

	mu  sync.Mutex
	rng *rand.Rand
}

// Options configures an Aggregator.
type Options struct {
	Providers  []ProviderConfig
	MaxResults int    // result cap after merge; 0 uses DefaultMaxResults
	ZipCode    string // location hint forwarded to every provider
	Logger     *log.Logger
	Metrics    *observability.Metrics // optional
	Recorder   EventRecorder          // optional analytics sink
	Seed       int64                  // shuffle seed; 0 seeds from the clock
}

// New creates an Aggregator.
func New(opts Options) *Aggregator {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Aggregator{
		providers:  opts.Providers,
		maxResults: maxResults,
		zipCode:    opts.ZipCode,
		logger:     logger,
		metrics:    opts.Metrics,
		recorder:   opts.Recorder,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// outcome is one retailer's settled contribution.
type outcome struct {
	retailer domain.Retailer
	results  []domain.SearchResult
	duration time.Duration
	timedOut bool
	failed   bool
}

// Search fans the query out to all providers and returns the shuffled,
// capped union of everything that settled in time. The returned error is
// non-nil only when the request never reached fan-out (cancelled context);
// retailer errors and timeouts are absorbed into empty contributions.
func (a *Aggregator) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	optimized := OptimizeQuery(query)
	opts := retailer.SearchOptions{ZipCode: a.zipCode, Limit: a.maxResults}

	outcomes := make(chan outcome, len(a.providers))
	for _, pc := range a.providers {
		go a.callProvider(ctx, pc, optimized, opts, outcomes)
	}

	// Wait for every provider to settle. Each goroutine is bounded by its
	// own timeout, so total latency is bounded by the slowest timeout, not
	// the sum.
	collected := make([]outcome, 0, len(a.providers))
	merged := make([]domain.SearchResult, 0, a.maxResults)
	for range a.providers {
		o := <-outcomes
		collected = append(collected, o)
		merged = append(merged, o.results...)
	}

	a.shuffle(merged)
	if len(merged) > a.maxResults {
		merged = merged[:a.maxResults]
	}

	elapsed := time.Since(start)
	a.observe(collected, len(merged), elapsed)
	a.record(ctx, query, optimized, collected, len(merged), elapsed)

	return merged, nil
}

// callProvider runs one retailer call under its own timeout and converts any
// failure into an empty contribution.
func (a *Aggregator) callProvider(ctx context.Context, pc ProviderConfig, query string, opts retailer.SearchOptions, out chan<- outcome) {
	timeout := pc.Timeout
	if timeout <= 0 {
		timeout = DefaultFastTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	results, err := pc.Provider.Search(cctx, query, opts)
	o := outcome{
		retailer: pc.Provider.Retailer(),
		results:  results,
		duration: time.Since(start),
	}
	if err != nil {
		o.results = nil
		o.failed = true
		o.timedOut = errors.Is(err, context.DeadlineExceeded)
		a.logger.Printf("[search] %s contributed nothing: %v", o.retailer, err)
	}
	out <- o
}

// shuffle applies a uniform Fisher-Yates permutation so no retailer's
// ordering systematically leads the merged list.
func (a *Aggregator) shuffle(results []domain.SearchResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rng.Shuffle(len(results), func(i, j int) {
		results[i], results[j] = results[j], results[i]
	})
}

// observe updates Prometheus metrics for one settled search.
func (a *Aggregator) observe(outcomes []outcome, total int, elapsed time.Duration) {
	if a.metrics == nil {
		return
	}
	a.metrics.SearchRequestsTotal.Inc()
	a.metrics.SearchResultsCount.Observe(float64(total))
	a.metrics.SearchDuration.Observe(elapsed.Seconds())
	for _, o := range outcomes {
		label := o.retailer.String()
		a.metrics.RetailerDuration.WithLabelValues(label).Observe(o.duration.Seconds())
		a.metrics.RetailerResults.WithLabelValues(label).Add(float64(len(o.results)))
		if o.timedOut {
			a.metrics.RetailerTimeouts.WithLabelValues(label).Inc()
		} else if o.failed {
			a.metrics.RetailerErrors.WithLabelValues(label).Inc()
		}
	}
}

// record emits a best-effort analytics event; failures are logged, never
// surfaced to the caller.
func (a *Aggregator) record(ctx context.Context, query, optimized string, outcomes []outcome, total int, elapsed time.Duration) {
	if a.recorder == nil {
		return
	}

	event := &domain.SearchEvent{
		EventID:        uuid.NewString(),
		Query:          query,
		OptimizedQuery: optimized,
		Results:        total,
		DurationMs:     elapsed.Milliseconds(),
		OccurredAt:     time.Now().UnixMilli(),
	}
	for _, o := range outcomes {
		event.Outcomes = append(event.Outcomes, domain.RetailerOutcome{
			Retailer:   o.retailer,
			Results:    len(o.results),
			DurationMs: o.duration.Milliseconds(),
			TimedOut:   o.timedOut,
			Failed:     o.failed,
		})
	}

	if err := a.recorder.RecordSearch(ctx, event); err != nil {
		a.logger.Printf("[search] record event: %v", err)
		if a.metrics != nil {
			a.metrics.SearchEventErrors.Inc()
		}
		return
	}
	if a.metrics != nil {
		a.metrics.SearchEventsRecorded.Inc()
	}
}
