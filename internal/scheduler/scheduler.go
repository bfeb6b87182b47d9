// Package scheduler wires up the cron job that periodically collects and
// ingests postings, and runs on-demand scrapes triggered over HTTP.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"jobmate/aggregator-service/internal/ingest"
	"jobmate/aggregator-service/internal/model"
)

// Collector gathers raw candidates from the configured sources.
type Collector interface {
	Collect(ctx context.Context) []model.Candidate
}

// Ingester stores a batch of candidates.
type Ingester interface {
	Run(ctx context.Context, candidates []model.Candidate) ingest.BatchReport
}

// Locker guards a run across processes. Acquire reports false when another
// holder owns the lock.
type Locker interface {
	Acquire(ctx context.Context, owner string) (bool, error)
	Release(ctx context.Context, owner string) error
}

// Scheduler wraps robfig/cron and manages the scrape loop. At most one run
// is in flight per process, and per deployment when a Locker is set.
type Scheduler struct {
	cron      *cron.Cron
	spec      string // cron spec, e.g. "0 9 * * *"
	collector Collector
	ingester  Ingester
	lock      Locker
	onStart   bool

	started atomic.Bool
	running atomic.Bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	newID   func() string
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocker adds a cross-process lock around every run.
func WithLocker(l Locker) Option {
	return func(s *Scheduler) { s.lock = l }
}

// WithRunOnStart makes Start trigger one run immediately.
func WithRunOnStart(enabled bool) Option {
	return func(s *Scheduler) { s.onStart = enabled }
}

// New creates a Scheduler firing on spec.
func New(spec string, c Collector, in Ingester, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:      cron.New(cron.WithLogger(cron.DefaultLogger)),
		spec:      spec,
		collector: c,
		ingester:  in,
		newID:     uuid.NewString,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the job and starts the scheduler. Runs derive from ctx
// and are cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	_, err := s.cron.AddFunc(s.spec, func() {
		if !s.Trigger() {
			log.Println("[scheduler] Previous scrape still running, skipping tick")
		}
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.started.Store(true)
	log.Printf("[scheduler] Cron started, spec: %s", s.spec)

	if s.onStart {
		s.Trigger()
	}
	return nil
}

// Stop halts the cron, cancels any in-flight run and waits for it to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.started.Store(false)
	s.cancel()
	s.wg.Wait()
	log.Println("[scheduler] Cron stopped")
}

// Trigger starts a run in the background. It returns false without starting
// anything when a run is already in progress in this process.
func (s *Scheduler) Trigger() bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		s.RunOnce(s.ctx)
	}()
	return true
}

// Running reports whether the cron is started.
func (s *Scheduler) Running() bool { return s.started.Load() }

// Busy reports whether a run is in progress in this process.
func (s *Scheduler) Busy() bool { return s.running.Load() }

// RunOnce collects and ingests synchronously. It returns false when the
// cross-process lock is held elsewhere.
func (s *Scheduler) RunOnce(ctx context.Context) (ingest.BatchReport, bool) {
	runID := s.newID()

	if s.lock != nil {
		ok, err := s.lock.Acquire(ctx, runID)
		if err != nil {
			// Redis being down must not stop scraping.
			slog.Warn("scheduler: lock unavailable, running unguarded", "run_id", runID, "err", err)
		} else if !ok {
			log.Printf("[scheduler] Scrape %s skipped: another instance holds the lock", runID)
			return ingest.BatchReport{RunID: runID}, false
		} else {
			defer func() {
				if err := s.lock.Release(context.WithoutCancel(ctx), runID); err != nil {
					slog.Warn("scheduler: lock release failed", "run_id", runID, "err", err)
				}
			}()
		}
	}

	log.Printf("[scheduler] Scrape %s started", runID)
	candidates := s.collector.Collect(ctx)
	report := s.ingester.Run(ingest.WithRunID(ctx, runID), candidates)
	log.Printf("[scheduler] Scrape %s complete: %d received, %d stored, %d duplicates, %d filtered, %d failed",
		runID, report.Received, report.Stored, report.Duplicates+report.InBatchDupes,
		report.Filtered(), report.Failed)
	return report, true
}
