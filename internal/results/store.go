// Package results holds the client-side copy of the lead list together with
// its loading and error status.
package results

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/metrics"
	"github.com/sells-group/prospect-cli/internal/resilience"
)

// Fetcher reads the complete current lead collection from the backend.
type Fetcher interface {
	FetchResults(ctx context.Context) ([]lead.Raw, error)
}

// State is a point-in-time copy of the store.
type State struct {
	Records   []lead.Display
	Loading   bool
	LastError error
	LoadedAt  time.Time
}

// Store caches the latest successfully fetched lead list. Only Load writes
// the records. Overlapping loads are neither coalesced nor cancelled: the
// last response to arrive wins, and Loading stays true until every
// outstanding load has finished.
type Store struct {
	fetcher Fetcher

	mu       sync.Mutex
	records  []lead.Display
	inflight int
	lastErr  error
	loadedAt time.Time
}

// NewStore creates an empty store backed by f.
func NewStore(f Fetcher) *Store {
	return &Store{
		fetcher: f,
		records: []lead.Display{},
	}
}

// Load fetches and normalizes the full lead list and replaces the held
// records. On failure the previous records are kept, the error is recorded
// and returned as a *resilience.TransportError.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	start := time.Now()
	raws, err := s.fetcher.FetchResults(ctx)
	metrics.ResultLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		terr := resilience.NewTransportError(resilience.OpFetchResults, err)
		s.mu.Lock()
		s.lastErr = terr
		s.mu.Unlock()

		metrics.ResultLoads.WithLabelValues(metrics.OutcomeFailed).Inc()
		zap.L().Error("results: load failed, keeping previous records",
			zap.Bool("transient", resilience.IsTransient(err)),
			zap.Error(err),
		)
		return terr
	}

	records := lead.NormalizeAll(raws)

	s.mu.Lock()
	s.records = records
	s.lastErr = nil
	s.loadedAt = time.Now()
	s.mu.Unlock()

	metrics.ResultLoads.WithLabelValues(metrics.OutcomeSucceeded).Inc()
	metrics.ResultRecords.Set(float64(len(records)))
	zap.L().Info("results: loaded",
		zap.Int("records", len(records)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Snapshot returns a copy of the current state. The records slice is shared
// with the store but never mutated in place, since Load swaps it wholesale.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Records:   s.records,
		Loading:   s.inflight > 0,
		LastError: s.lastErr,
		LoadedAt:  s.loadedAt,
	}
}

// Records returns the current records.
func (s *Store) Records() []lead.Display {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records
}

// Loading reports whether at least one load is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}
