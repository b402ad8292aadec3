package repository

import (
	"sync/atomic"
	"time"

	"github.com/okian/casewatch/internal/domain/model"
	"github.com/okian/casewatch/pkg/metrics"
)

// SnapshotStore keeps the current snapshot behind an atomic pointer.
// Readers never block and always observe a whole snapshot.
type SnapshotStore struct {
	// current is an atomic pointer to the last published snapshot
	current atomic.Pointer[model.Snapshot]
	now     func() time.Time
}

var _ Store = (*SnapshotStore)(nil)

// NewSnapshotStore creates an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the current snapshot.
func (s *SnapshotStore) Load() (*model.Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		metrics.RecordErrorByComponent("repository", "no_snapshot")
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Publish swaps in a copy of snap with Version one above the previous
// snapshot. Versions stay monotonic even if two publishers race.
func (s *SnapshotStore) Publish(snap *model.Snapshot) (*model.Snapshot, error) {
	if snap == nil {
		return nil, ErrNilSnapshot
	}

	next := *snap
	next.PublishedAt = s.now()
	for {
		prev := s.current.Load()
		next.Version = 1
		if prev != nil {
			next.Version = prev.Version + 1
		}
		if s.current.CompareAndSwap(prev, &next) {
			break
		}
	}

	metrics.RecordSnapshot(next.Version, len(next.Records), next.SourceCount,
		float64(next.PublishedAt.Unix()), next.Totals)
	return &next, nil
}

// Version returns the current snapshot version, 0 when empty.
func (s *SnapshotStore) Version() uint64 {
	if snap := s.current.Load(); snap != nil {
		return snap.Version
	}
	return 0
}
