package domain

// RetailerOutcome records one retailer's contribution to a search request.
type RetailerOutcome struct {
	Retailer   Retailer
	Results    int
	DurationMs int64
	TimedOut   bool
	Failed     bool
}

// SearchEvent is an analytics record for one aggregated search request.
// Written best-effort to ClickHouse; corresponds to search_events table.
type SearchEvent struct {
	EventID        string // UUID
	Query          string // raw user query
	OptimizedQuery string // query after stop-word stripping
	Results        int    // total results returned to the caller
	DurationMs     int64  // total aggregator wall-clock time
	Outcomes       []RetailerOutcome
	OccurredAt     int64 // Unix timestamp in milliseconds
}
