// Package service provides the ranking engine behind the HTTP API: it owns
// the refresh scheduler, the snapshot store and the active search term.
package service

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/casewatch/internal/adapters/repository"
	"github.com/okian/casewatch/internal/adapters/source"
	"github.com/okian/casewatch/internal/domain/model"
	"github.com/okian/casewatch/internal/domain/search"
	"github.com/okian/casewatch/internal/domain/selection"
	"github.com/okian/casewatch/pkg/logger"
	"github.com/okian/casewatch/pkg/metrics"
)

// Default engine configuration constants.
const (
	defaultTopN            = 100
	defaultPinnedKey       = "Vietnam"
	defaultRefreshInterval = 30 * time.Second
	defaultMetricField     = "cases"
)

// Service is the ranking engine. N, the pinned key and the tracked fields are
// fixed for its lifetime.
type Service struct {
	mu sync.Mutex

	// Core components
	source    source.Source
	store     *repository.SnapshotStore
	scheduler *Scheduler

	// Configuration
	topN            int
	pinnedKey       string
	interval        time.Duration
	immediate       bool
	metricField     string
	secondaryFields []string
	rng             selection.Rand

	// State
	searchTerm atomic.Pointer[string]
	started    bool

	// Logging
	logger logger.Logger
}

// New constructs an engine. It returns ErrInvalidConfig when N or the
// refresh interval is not positive, or when no source is set.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		topN:            defaultTopN,
		pinnedKey:       defaultPinnedKey,
		interval:        defaultRefreshInterval,
		immediate:       true,
		metricField:     defaultMetricField,
		secondaryFields: []string{"deaths", "recovered"},
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case s.topN <= 0:
		return nil, fmt.Errorf("%w: top n must be positive, got %d", ErrInvalidConfig, s.topN)
	case s.interval <= 0:
		return nil, fmt.Errorf("%w: refresh interval must be positive, got %s", ErrInvalidConfig, s.interval)
	case s.source == nil:
		return nil, fmt.Errorf("%w: no record source", ErrInvalidConfig)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("engine")
	}
	if s.store == nil {
		s.store = repository.NewSnapshotStore()
	}
	empty := ""
	s.searchTerm.Store(&empty)
	s.scheduler = newScheduler(s.interval, s.immediate, s, s.logger.Named("scheduler"))

	return s, nil
}

// Start begins periodic refreshing.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting ranking engine...",
		logger.Int("top_n", s.topN),
		logger.String("pinned_key", s.pinnedKey),
		logger.Duration("interval", s.interval),
		logger.Any("immediate", s.immediate),
	)

	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	s.started = true
	return nil
}

// Stop cancels the pending refresh. An in-flight fetch finishes but its
// result is never published. The engine cannot be restarted.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler.Stop()
	if s.started {
		s.started = false
		s.logger.Info(context.Background(), "ranking engine stopped")
	}
}

// Refresh runs a cycle now. It returns ErrCycleInFlight when a cycle is
// already running and the fetch error when the source fails.
func (s *Service) Refresh(ctx context.Context) error {
	return s.scheduler.Trigger(ctx)
}

// CurrentSnapshot returns the last published snapshot.
func (s *Service) CurrentSnapshot() (*model.Snapshot, error) {
	return s.store.Load()
}

// SetSearchTerm replaces the active search term.
func (s *Service) SetSearchTerm(term string) {
	s.searchTerm.Store(&term)
}

// SearchTerm returns the active search term.
func (s *Service) SearchTerm() string {
	return *s.searchTerm.Load()
}

// CurrentView filters the current snapshot by the active search term.
func (s *Service) CurrentView() ([]model.Record, error) {
	return s.View(s.SearchTerm())
}

// View filters the current snapshot by term without touching the active term.
func (s *Service) View(term string) ([]model.Record, error) {
	snap, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	view := search.Filter(snap.Records, term)
	metrics.RecordView(term != "", len(view))
	return view, nil
}

// AggregateTotals returns the totals of the current snapshot. They cover the
// whole snapshot whatever the search term is.
func (s *Service) AggregateTotals() (map[string]int64, error) {
	snap, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return maps.Clone(snap.Totals), nil
}

// State returns the scheduler state.
func (s *Service) State() State {
	return s.scheduler.State()
}

// GetStats returns engine statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	stats := map[string]interface{}{
		"started":         started,
		"state":           s.scheduler.State().String(),
		"topN":            s.topN,
		"pinnedKey":       s.pinnedKey,
		"refreshInterval": s.interval.String(),
		"searchTerm":      s.SearchTerm(),
		"cyclesPublished": s.scheduler.published.Load(),
		"cyclesFailed":    s.scheduler.failed.Load(),
		"cyclesDiscarded": s.scheduler.discarded.Load(),
		"skippedTicks":    s.scheduler.Skipped(),
	}

	if snap, err := s.store.Load(); err == nil {
		stats["snapshotVersion"] = snap.Version
		stats["snapshotEntries"] = len(snap.Records)
		stats["snapshotCycle"] = snap.CycleID
		stats["publishedAt"] = snap.PublishedAt.UTC().Format(time.RFC3339)
		stats["sourceCount"] = snap.SourceCount
		stats["dropped"] = snap.Dropped
	}

	return stats
}
