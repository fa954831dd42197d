package clickhouse

import (
	"context"
	"fmt"
	"time"

	"needlist/internal/domain"
	"needlist/internal/storage"
)

// SearchEventStore implements storage.SearchEventStore using ClickHouse.
// Events are flattened to one row per retailer outcome; event-level fields
// are denormalized onto every row.
type SearchEventStore struct {
	conn *Conn
}

// NewSearchEventStore creates a new SearchEventStore.
func NewSearchEventStore(conn *Conn) *SearchEventStore {
	return &SearchEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SearchEventStore = (*SearchEventStore)(nil)

// Insert records one search event with its per-retailer outcomes. An event
// with no outcomes still produces a single row so it is counted.
func (s *SearchEventStore) Insert(ctx context.Context, e *domain.SearchEvent) error {
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO search_events (
			event_id, query, optimized_query, results, duration_ms,
			retailer, retailer_results, retailer_duration_ms, timed_out, failed,
			occurred_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	occurredAt := time.UnixMilli(e.OccurredAt).UTC()

	outcomes := e.Outcomes
	if len(outcomes) == 0 {
		outcomes = []domain.RetailerOutcome{{}}
	}

	for _, o := range outcomes {
		err = batch.Append(
			e.EventID, e.Query, e.OptimizedQuery,
			uint32(e.Results), uint64(e.DurationMs),
			string(o.Retailer), uint32(o.Results), uint64(o.DurationMs),
			boolToUInt8(o.TimedOut), boolToUInt8(o.Failed),
			occurredAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// CountSince returns how many distinct searches were recorded at or after
// ts (Unix milliseconds).
func (s *SearchEventStore) CountSince(ctx context.Context, ts int64) (int64, error) {
	query := `
		SELECT uniqExact(event_id)
		FROM search_events
		WHERE occurred_at >= ?
	`

	var count uint64
	row := s.conn.QueryRow(ctx, query, time.UnixMilli(ts).UTC())
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count search events: %w", err)
	}
	return int64(count), nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
