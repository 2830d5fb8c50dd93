// Package sched runs the pipeline on a cron cadence. A boolean busy flag
// guards against overlapping runs: a tick that fires while a run is still
// active is skipped, not queued.
package sched

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// RunFunc executes one pipeline pass.
type RunFunc func(ctx context.Context) error

// Scheduler triggers runs on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
	run  RunFunc
	busy atomic.Bool

	// SkippedTicks counts ticks dropped because a run was still active.
	skipped atomic.Int64
}

// New creates a scheduler invoking run on each tick.
func New(run RunFunc) *Scheduler {
	return &Scheduler{cron: cron.New(), run: run}
}

// Start registers the schedule and begins ticking. When immediate is true
// one run fires right away, before the first scheduled tick.
func (s *Scheduler) Start(ctx context.Context, spec string, immediate bool) error {
	err := s.cron.AddFunc(spec, func() { s.tick(ctx) })
	if err != nil {
		return eris.Wrapf(err, "sched: invalid schedule %q", spec)
	}

	s.cron.Start()
	zap.L().Info("sched: scheduler started", zap.String("schedule", spec))

	if immediate {
		s.tick(ctx)
	}
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		zap.L().Warn("sched: previous run still active, skipping tick")
		return
	}
	defer s.busy.Store(false)

	if err := s.run(ctx); err != nil {
		zap.L().Error("sched: run failed", zap.Error(err))
	}
}

// Busy reports whether a run is currently active.
func (s *Scheduler) Busy() bool {
	return s.busy.Load()
}

// Skipped returns how many ticks were dropped due to an active run.
func (s *Scheduler) Skipped() int64 {
	return s.skipped.Load()
}

// Stop halts the cron loop. An in-flight run finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	zap.L().Info("sched: scheduler stopped")
}
