/**
 * @description
 * Cron scheduler setup for scheduled jobs.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron          *cron.Cron
	jobs          *Jobs
	logger        *slog.Logger
	resetSchedule string
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, resetSchedule string) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:          c,
		jobs:          jobs,
		logger:        logger,
		resetSchedule: resetSchedule,
	}
}

// Start registers the jobs and starts the cron scheduler. The monthly reset
// must run exclusively: deploy exactly one scheduler instance, since a
// duplicate run in the same cycle re-applies the carry-over bonus.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.resetSchedule, s.jobs.RunMonthlyReset); err != nil {
		s.logger.Error("failed to schedule monthly credit reset job", "error", err)
	} else {
		s.logger.Info("scheduled monthly credit reset job", "schedule", s.resetSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
