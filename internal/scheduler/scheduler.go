package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"studytracker/internal/service"
)

// Reconciler checks stored user totals against completed tasks.
type Reconciler interface {
	Reconcile(ctx context.Context, apply bool) (*service.ReconcileReport, error)
}

// Scheduler runs the periodic reconciliation pass.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	reconciler Reconciler
	interval   time.Duration
	apply      bool
	logger     *log.Logger
}

func New(reconciler Reconciler, interval time.Duration, apply bool, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		reconciler: reconciler,
		interval:   interval,
		apply:      apply,
		logger:     logger,
	}
}

// Start schedules the pass and runs it once right away.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.RunOnce); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunOnce performs a single reconciliation pass and logs the outcome.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	report, err := s.reconciler.Reconcile(ctx, s.apply)
	if err != nil {
		s.logger.Printf("reconcile failed: %v", err)
		return
	}
	if len(report.Drifts) == 0 {
		return
	}
	s.logger.Printf("reconcile: %d of %d users drifted, %d repaired", len(report.Drifts), report.UsersChecked, report.Repaired)
}
