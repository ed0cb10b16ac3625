package server

import (
	"context"
	"sync"
	"time"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/schema"
)

// Scheduler triggers a full analysis run once a day at a fixed
// hour:minute. Overlapping runs are not guarded against: a slow run can
// still be in flight when the next trigger fires, and the warning below
// is the only signal.
type Scheduler struct {
	cfg      *contract.Config
	analysis AnalysisRunner
	now      func() time.Time

	mu      sync.Mutex
	running bool
	nextRun time.Time
}

// NewScheduler builds a daily scheduler from config.
func NewScheduler(cfg *contract.Config, analysis AnalysisRunner) *Scheduler {
	return &Scheduler{cfg: cfg, analysis: analysis, now: time.Now}
}

// nextAfter computes the next hour:minute occurrence after t.
func (s *Scheduler) nextAfter(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), s.cfg.ScheduleHour, s.cfg.ScheduleMinute, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NextRun reports when the next scheduled run fires.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRun
}

// Start launches the timer goroutine; it stops when ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	next := s.nextAfter(s.now())
	s.mu.Lock()
	s.nextRun = next
	s.mu.Unlock()

	contract.Info("✅ scheduler armed: daily full analysis at %02d:%02d (next run %s)",
		s.cfg.ScheduleHour, s.cfg.ScheduleMinute, next.Format(contract.DateTimeFormat))

	go func() {
		for {
			s.mu.Lock()
			wait := time.Until(s.nextRun)
			s.mu.Unlock()

			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
				go s.fire(ctx)
				s.mu.Lock()
				s.nextRun = s.nextAfter(s.now())
				s.mu.Unlock()
			}
		}
	}()
}

// fire runs one scheduled analysis.
func (s *Scheduler) fire(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		contract.Warning("previous scheduled run still in progress, starting another anyway")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	contract.Info("scheduled analysis starting")
	if _, err := s.analysis.Run(ctx, schema.AllAnalysis); err != nil {
		contract.Warning("scheduled analysis failed: %v", err)
		return
	}
	contract.Info("scheduled analysis finished")
}
