package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"needlist/internal/domain"
	"needlist/internal/retailer"
	"needlist/internal/retailer/stub"
)

func results(r domain.Retailer, n int) []domain.SearchResult {
	out := make([]domain.SearchResult, n)
	for i := range out {
		out[i] = domain.SearchResult{
			ProductID: fmt.Sprintf("%s-%d", r, i),
			Title:     fmt.Sprintf("item %d", i),
			Retailer:  r,
		}
	}
	return out
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestAggregator(providers ...ProviderConfig) *Aggregator {
	return New(Options{
		Providers: providers,
		Logger:    quietLogger(),
		Seed:      1,
	})
}

func TestAggregator_MergesAllRetailers(t *testing.T) {
	agg := newTestAggregator(
		ProviderConfig{Provider: stub.NewStubProvider(domain.RetailerAmazon, results(domain.RetailerAmazon, 3)), Timeout: time.Second},
		ProviderConfig{Provider: stub.NewStubProvider(domain.RetailerWalmart, results(domain.RetailerWalmart, 4)), Timeout: time.Second},
		ProviderConfig{Provider: stub.NewStubProvider(domain.RetailerTarget, results(domain.RetailerTarget, 5)), Timeout: time.Second},
	)

	got, err := agg.Search(context.Background(), "blanket")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 12 {
		t.Fatalf("expected 12 merged results, got %d", len(got))
	}

	// Every result keeps the retailer tag stamped by its adapter.
	counts := map[domain.Retailer]int{}
	for _, r := range got {
		counts[r.Retailer]++
	}
	if counts[domain.RetailerAmazon] != 3 || counts[domain.RetailerWalmart] != 4 || counts[domain.RetailerTarget] != 5 {
		t.Errorf("per-retailer counts wrong: %v", counts)
	}
}

func TestAggregator_PartialFailureTolerance(t *testing.T) {
	// Every subset of failing providers still yields the union of the rest.
	for mask := 0; mask < 8; mask++ {
		retailers := []domain.Retailer{domain.RetailerAmazon, domain.RetailerWalmart, domain.RetailerTarget}
		var providers []ProviderConfig
		wantPerRetailer := map[domain.Retailer]int{}
		for i, r := range retailers {
			p := stub.NewStubProvider(r, results(r, 2))
			if mask&(1<<i) != 0 {
				p = p.WithError(errors.New("retailer down"))
			} else {
				wantPerRetailer[r] = 2
			}
			providers = append(providers, ProviderConfig{Provider: p, Timeout: time.Second})
		}

		agg := newTestAggregator(providers...)
		got, err := agg.Search(context.Background(), "crib")
		if err != nil {
			t.Fatalf("mask %03b: Search: %v", mask, err)
		}

		counts := map[domain.Retailer]int{}
		for _, r := range got {
			counts[r.Retailer]++
		}
		for r, want := range wantPerRetailer {
			if counts[r] != want {
				t.Errorf("mask %03b: retailer %s contributed %d, want %d", mask, r, counts[r], want)
			}
		}
		if len(got) != 2*len(wantPerRetailer) {
			t.Errorf("mask %03b: got %d results, want %d", mask, len(got), 2*len(wantPerRetailer))
		}
	}
}

func TestAggregator_TimeoutContributesNothing(t *testing.T) {
	slow := stub.NewStubProvider(domain.RetailerAmazon, results(domain.RetailerAmazon, 5)).
		WithDelay(500 * time.Millisecond)
	fast := stub.NewStubProvider(domain.RetailerTarget, results(domain.RetailerTarget, 2))

	agg := newTestAggregator(
		ProviderConfig{Provider: slow, Timeout: 50 * time.Millisecond},
		ProviderConfig{Provider: fast, Timeout: time.Second},
	)

	got, err := agg.Search(context.Background(), "shoes")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected only the fast retailer's 2 results, got %d", len(got))
	}
	for _, r := range got {
		if r.Retailer != domain.RetailerTarget {
			t.Errorf("unexpected retailer %s in results", r.Retailer)
		}
	}
}

func TestAggregator_BoundedLatency(t *testing.T) {
	// Three providers all sleeping past their timeouts: wall-clock time must
	// track the slowest timeout, not the sum of all three.
	mk := func(r domain.Retailer, timeout time.Duration) ProviderConfig {
		return ProviderConfig{
			Provider: stub.NewStubProvider(r, nil).WithDelay(10 * time.Second),
			Timeout:  timeout,
		}
	}

	agg := newTestAggregator(
		mk(domain.RetailerAmazon, 200*time.Millisecond),
		mk(domain.RetailerWalmart, 80*time.Millisecond),
		mk(domain.RetailerTarget, 80*time.Millisecond),
	)

	start := time.Now()
	got, err := agg.Search(context.Background(), "anything")
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected zero results, got %d", len(got))
	}
	if elapsed > 600*time.Millisecond {
		t.Errorf("aggregation took %v, want bounded by the slowest timeout plus overhead", elapsed)
	}
}

func TestAggregator_ResultCap(t *testing.T) {
	agg := New(Options{
		Providers: []ProviderConfig{
			{Provider: stub.NewStubProvider(domain.RetailerAmazon, results(domain.RetailerAmazon, 40)), Timeout: time.Second},
			{Provider: stub.NewStubProvider(domain.RetailerWalmart, results(domain.RetailerWalmart, 40)), Timeout: time.Second},
		},
		MaxResults: 60,
		Logger:     quietLogger(),
		Seed:       1,
	})

	got, err := agg.Search(context.Background(), "socks")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 60 {
		t.Errorf("expected exactly 60 results, got %d", len(got))
	}
}

func TestAggregator_ShuffleMixesRetailers(t *testing.T) {
	agg := newTestAggregator(
		ProviderConfig{Provider: stub.NewStubProvider(domain.RetailerAmazon, results(domain.RetailerAmazon, 30)), Timeout: time.Second},
		ProviderConfig{Provider: stub.NewStubProvider(domain.RetailerWalmart, results(domain.RetailerWalmart, 30)), Timeout: time.Second},
	)

	got, err := agg.Search(context.Background(), "toys")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// If the first half is all one retailer, concatenation order survived.
	first := got[0].Retailer
	mixed := false
	for _, r := range got[:30] {
		if r.Retailer != first {
			mixed = true
			break
		}
	}
	if !mixed {
		t.Error("results do not appear shuffled across retailers")
	}
}

func TestAggregator_QueryOptimizedOnceForAllProviders(t *testing.T) {
	var queries []string
	rec := &queryRecordingProvider{r: domain.RetailerAmazon, sink: &queries}
	rec2 := &queryRecordingProvider{r: domain.RetailerTarget, sink: &queries}

	agg := newTestAggregator(
		ProviderConfig{Provider: rec, Timeout: time.Second},
		ProviderConfig{Provider: rec2, Timeout: time.Second},
	)

	if _, err := agg.Search(context.Background(), "a new crib for my baby"); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(queries) != 2 {
		t.Fatalf("expected 2 provider calls, got %d", len(queries))
	}
	if queries[0] != queries[1] {
		t.Errorf("providers received different queries: %q vs %q", queries[0], queries[1])
	}
	if queries[0] != "crib baby" {
		t.Errorf("expected optimized query %q, got %q", "crib baby", queries[0])
	}
}

func TestAggregator_CancelledContextBeforeFanOut(t *testing.T) {
	agg := newTestAggregator(
		ProviderConfig{Provider: stub.NewStubProvider(domain.RetailerAmazon, nil), Timeout: time.Second},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := agg.Search(ctx, "q"); err == nil {
		t.Fatal("expected error when context is cancelled before fan-out")
	}
}

func TestAggregator_RecordsSearchEvent(t *testing.T) {
	rec := &capturingRecorder{}
	agg := New(Options{
		Providers: []ProviderConfig{
			{Provider: stub.NewStubProvider(domain.RetailerTarget, results(domain.RetailerTarget, 2)), Timeout: time.Second},
			{Provider: stub.NewStubProvider(domain.RetailerAmazon, nil).WithError(errors.New("down")), Timeout: time.Second},
		},
		Logger:   quietLogger(),
		Recorder: rec,
		Seed:     1,
	})

	if _, err := agg.Search(context.Background(), "winter coat"); err != nil {
		t.Fatalf("Search: %v", err)
	}

	if rec.event == nil {
		t.Fatal("expected a search event to be recorded")
	}
	if rec.event.Query != "winter coat" {
		t.Errorf("event query = %q", rec.event.Query)
	}
	if rec.event.Results != 2 {
		t.Errorf("event results = %d, want 2", rec.event.Results)
	}
	if len(rec.event.Outcomes) != 2 {
		t.Fatalf("expected 2 retailer outcomes, got %d", len(rec.event.Outcomes))
	}
	for _, o := range rec.event.Outcomes {
		if o.Retailer == domain.RetailerAmazon && !o.Failed {
			t.Error("amazon outcome should be marked failed")
		}
	}
}

type capturingRecorder struct {
	mu    sync.Mutex
	event *domain.SearchEvent
}

func (r *capturingRecorder) RecordSearch(_ context.Context, e *domain.SearchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.event = e
	return nil
}

var recMu sync.Mutex

// queryRecordingProvider captures the query each provider receives.
type queryRecordingProvider struct {
	r    domain.Retailer
	sink *[]string
}

func (p *queryRecordingProvider) Retailer() domain.Retailer { return p.r }

func (p *queryRecordingProvider) Search(_ context.Context, query string, _ retailer.SearchOptions) ([]domain.SearchResult, error) {
	recMu.Lock()
	defer recMu.Unlock()
	*p.sink = append(*p.sink, query)
	return nil, nil
}
