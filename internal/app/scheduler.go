/**
 * @description
 * Cron scheduler setup for the KYC reconciliation sweep.
 */
package app

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron       *cron.Cron
	reconciler *Reconciler
	logger     *slog.Logger
	schedule   string
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(reconciler *Reconciler, logger *slog.Logger, schedule string) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:       c,
		reconciler: reconciler,
		logger:     logger,
		schedule:   schedule,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.reconciler.ReconcilePendingKyc); err != nil {
		s.logger.Error("failed to schedule kyc reconciliation job", "error", err)
	} else {
		s.logger.Info("scheduled kyc reconciliation job", "schedule", s.schedule)
	}

	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
