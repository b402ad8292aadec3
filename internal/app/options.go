package service

import (
	"time"

	"github.com/okian/casewatch/internal/adapters/repository"
	"github.com/okian/casewatch/internal/adapters/source"
	"github.com/okian/casewatch/internal/domain/selection"
	"github.com/okian/casewatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets the record source polled every cycle.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithStore sets the snapshot store. Mostly useful in tests.
func WithStore(store *repository.SnapshotStore) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithTopN sets how many entries a snapshot holds before pinning.
// Non-positive values are rejected by New.
func WithTopN(n int) Option {
	return func(s *Service) {
		s.topN = n
	}
}

// WithPinnedKey sets the entity name always shown first. Empty disables pinning.
func WithPinnedKey(key string) Option {
	return func(s *Service) {
		s.pinnedKey = key
	}
}

// WithRefreshInterval sets the scheduler period. Non-positive values are
// rejected by New.
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.interval = interval
	}
}

// WithImmediateRefresh controls whether Start runs a cycle right away
// instead of waiting for the first tick.
func WithImmediateRefresh(enabled bool) Option {
	return func(s *Service) {
		s.immediate = enabled
	}
}

// WithMetricField sets the totals key used for the primary metric.
func WithMetricField(field string) Option {
	return func(s *Service) {
		if field != "" {
			s.metricField = field
		}
	}
}

// WithSecondaryFields sets the secondary fields summed into the totals.
func WithSecondaryFields(fields []string) Option {
	return func(s *Service) {
		s.secondaryFields = append([]string(nil), fields...)
	}
}

// WithRand sets the pivot source for selection.
func WithRand(rng selection.Rand) Option {
	return func(s *Service) {
		s.rng = rng
	}
}
