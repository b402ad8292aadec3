package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/okian/casewatch/internal/adapters/source"
	"github.com/okian/casewatch/internal/domain/aggregate"
	"github.com/okian/casewatch/internal/domain/model"
	"github.com/okian/casewatch/internal/domain/ranking"
	"github.com/okian/casewatch/internal/domain/selection"
	"github.com/okian/casewatch/pkg/logger"
	"github.com/okian/casewatch/pkg/metrics"
)

// prepare fetches the raw records and builds the next snapshot.
func (s *Service) prepare(ctx context.Context) (*model.Snapshot, error) {
	start := time.Now()
	raw, err := s.source.Fetch(ctx)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0
	metrics.RecordFetchLatency(latencyMs)
	if err != nil {
		if !errors.Is(err, source.ErrFetch) {
			err = &source.FetchError{Op: "engine.fetch", Err: err}
		}
		return nil, err
	}
	s.logger.Debug(ctx, "records fetched",
		logger.Int("count", len(raw)),
		logger.Float64("latency_ms", latencyMs),
	)

	snap := buildSnapshot(raw, s.topN, s.pinnedKey, s.metricField, s.secondaryFields, s.rng)
	if snap.Dropped > 0 {
		metrics.RecordMalformedRecords(snap.Dropped)
		s.logger.Warn(ctx, "dropped malformed records",
			logger.Int("dropped", snap.Dropped),
			logger.Int("source_count", snap.SourceCount),
		)
	}
	return snap, nil
}

// publish installs snap as the current snapshot.
func (s *Service) publish(snap *model.Snapshot) (*model.Snapshot, error) {
	return s.store.Publish(snap)
}

// buildSnapshot runs the pure part of a cycle: sanitize, select the top n,
// rank, pin, then total the final sequence.
func buildSnapshot(
	raw []model.Record,
	n int,
	pinnedKey, metricField string,
	fields []string,
	rng selection.Rand,
) *model.Snapshot {
	valid, dropped := model.Sanitize(raw)

	top := selection.TopN(valid, n, rng)
	ranked := ranking.Rank(top)
	final := ranking.Pin(ranked, valid, pinnedKey)

	return &model.Snapshot{
		CycleID:     uuid.NewString(),
		Records:     final,
		Totals:      aggregate.Totals(final, metricField, fields),
		SourceCount: len(raw),
		Dropped:     dropped,
	}
}
