package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/casewatch/internal/domain/model"
	"github.com/okian/casewatch/pkg/logger"
	"github.com/okian/casewatch/pkg/metrics"
)

// State is a refresh scheduler state.
type State int32

// Scheduler states. A cycle moves Idle -> Fetching -> Publishing -> Idle, or
// Fetching -> Idle when the fetch fails.
const (
	StateIdle State = iota
	StateFetching
	StatePublishing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StatePublishing:
		return "publishing"
	default:
		return "unknown"
	}
}

// publishPollInterval is how often Stop checks for a publish to finish.
const publishPollInterval = time.Millisecond

// cycleRunner does the work of one refresh cycle.
type cycleRunner interface {
	// prepare fetches records and builds the next snapshot.
	prepare(ctx context.Context) (*model.Snapshot, error)
	// publish installs a prepared snapshot.
	publish(snap *model.Snapshot) (*model.Snapshot, error)
}

// Scheduler drives refresh cycles on a fixed period. Cycles never overlap:
// the state machine admits a new cycle only from Idle, and a trigger that
// finds another state is ignored and counted.
type Scheduler struct {
	interval  time.Duration
	immediate bool
	runner    cycleRunner
	logger    logger.Logger

	state     atomic.Int32
	stopped   atomic.Bool
	skipped   atomic.Uint64
	published atomic.Uint64
	failed    atomic.Uint64
	discarded atomic.Uint64

	// lifecycle
	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func newScheduler(interval time.Duration, immediate bool, runner cycleRunner, log logger.Logger) *Scheduler {
	return &Scheduler{
		interval:  interval,
		immediate: immediate,
		runner:    runner,
		logger:    log,
	}
}

// State returns the current state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Skipped returns how many triggers were ignored because a cycle was in flight.
func (s *Scheduler) Skipped() uint64 { return s.skipped.Load() }

// Start launches the ticker loop. Cycles started by ticks fetch under ctx's
// values but not its cancellation: a fetch in flight when ctx ends is left
// to finish and Stop discards its result.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped.Load() {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.started = true

	go s.loop(context.WithoutCancel(ctx), loopCtx)
	return nil
}

// Stop cancels the ticker. A cycle still fetching is left to finish, but its
// result is discarded. Once Stop returns no further snapshot is published.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped.Swap(true) {
		return
	}
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	// A cycle that got past the stopped check is swapping the store; the
	// swap does not block, so wait it out.
	for s.State() == StatePublishing {
		time.Sleep(publishPollInterval)
	}
}

// Trigger runs one cycle in the caller's goroutine. It returns
// ErrCycleInFlight without side effects when another cycle is running.
func (s *Scheduler) Trigger(ctx context.Context) error {
	if s.stopped.Load() {
		return ErrStopped
	}
	if !s.begin(ctx) {
		return ErrCycleInFlight
	}
	return s.run(ctx)
}

func (s *Scheduler) loop(ctx, loopCtx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	if s.immediate {
		s.tick(ctx)
	}

	for {
		select {
		case <-loopCtx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick starts a cycle in the background so a slow fetch never delays the
// ticker; ticks that land during that fetch are skipped.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.begin(ctx) {
		return
	}
	go func() { _ = s.run(ctx) }()
}

// begin moves Idle -> Fetching.
func (s *Scheduler) begin(ctx context.Context) bool {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateFetching)) {
		s.skipped.Add(1)
		metrics.RecordSkippedTick()
		s.logger.Debug(ctx, "refresh skipped, cycle in flight",
			logger.String("state", s.State().String()))
		return false
	}
	metrics.UpdateSchedulerState(int(StateFetching))
	return true
}

func (s *Scheduler) setState(st State) {
	s.state.Store(int32(st))
	metrics.UpdateSchedulerState(int(st))
}

// run executes a cycle that begin admitted.
func (s *Scheduler) run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecordCycleDuration(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	snap, err := s.runner.prepare(ctx)
	if err != nil {
		s.setState(StateIdle)
		s.failed.Add(1)
		metrics.RecordRefreshCycle(metrics.OutcomeFetchError)
		metrics.RecordErrorByComponent("scheduler", "fetch")
		s.logger.Error(ctx, "refresh cycle failed, keeping previous snapshot", logger.Error(err))
		return err
	}

	s.setState(StatePublishing)
	if s.stopped.Load() {
		s.setState(StateIdle)
		s.discarded.Add(1)
		metrics.RecordRefreshCycle(metrics.OutcomeDiscarded)
		s.logger.Info(ctx, "refresh result discarded, engine stopped",
			logger.String("cycle", snap.CycleID))
		return ErrCycleDiscarded
	}

	published, err := s.runner.publish(snap)
	s.setState(StateIdle)
	if err != nil {
		s.failed.Add(1)
		metrics.RecordErrorByComponent("scheduler", "publish")
		s.logger.Error(ctx, "publishing snapshot failed", logger.Error(err))
		return err
	}

	s.published.Add(1)
	metrics.RecordRefreshCycle(metrics.OutcomePublished)
	s.logger.Info(ctx, "snapshot published",
		logger.String("cycle", published.CycleID),
		logger.Uint64("version", published.Version),
		logger.Int("entries", len(published.Records)),
		logger.Int("source_count", published.SourceCount),
		logger.Int("dropped", published.Dropped),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}
