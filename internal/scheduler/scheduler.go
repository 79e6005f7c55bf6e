package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"NoteValuator/internal/model"
	"NoteValuator/internal/valuation"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Runner executes a batch of valuations. *valuation.Service satisfies it.
type Runner interface {
	RunAll(ctx context.Context, specs []valuation.Spec) ([]*model.Valuation, error)
}

// SpecSource resolves the valuations to run at a given time, so relative
// valuation dates and calibration windows follow the clock.
type SpecSource func(now time.Time) ([]valuation.Spec, error)

// Scheduler re-runs the configured valuations on a cron schedule.
type Scheduler struct {
	Cron   *cron.Cron
	Runner Runner
	Specs  SpecSource
	Now    func() time.Time
	Ctx    context.Context

	mu      sync.Mutex
	lastRun []*model.Valuation
	lastErr error
}

// NewScheduler creates a new Scheduler. A run still in progress when the next
// tick fires causes that tick to be skipped.
func NewScheduler(ctx context.Context, runner Runner, specs SpecSource) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
		Runner: runner,
		Specs:  specs,
		Now:    time.Now,
		Ctx:    ctx,
	}
}

// Register adds the valuation job under a six-field cron expression.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddFunc(expr, s.valuationTask); err != nil {
		return fmt.Errorf("register valuation task: %w", err)
	}
	log.WithField("cron", expr).Info("valuation task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunNow executes the valuation task immediately.
func (s *Scheduler) RunNow() ([]*model.Valuation, error) {
	s.valuationTask()
	return s.Last()
}

// Last returns the outcome of the most recent run.
func (s *Scheduler) Last() ([]*model.Valuation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

func (s *Scheduler) valuationTask() {
	var out []*model.Valuation
	specs, err := s.Specs(s.Now())
	if err != nil {
		log.Errorf("resolve valuations: %v", err)
	} else {
		log.WithField("valuations", len(specs)).Info("running valuation task")
		out, err = s.Runner.RunAll(s.Ctx, specs)
		if err != nil {
			log.Errorf("valuation task: %v", err)
		}
	}
	s.mu.Lock()
	s.lastRun, s.lastErr = out, err
	s.mu.Unlock()
}
