/**
 * @description
 * Scheduled job implementations for the kudos-service.
 */
package app

import (
	"context"
	"log/slog"
	"time"
)

// ResetRepository defines the database operation needed by the monthly reset job.
type ResetRepository interface {
	ResetAllAccounts(ctx context.Context) (int64, error)
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	repo    ResetRepository
	logger  *slog.Logger
	timeout time.Duration
}

// NewJobs creates a new Jobs runner.
func NewJobs(repo ResetRepository, logger *slog.Logger) *Jobs {
	return &Jobs{
		repo:   repo,
		logger: logger,
		// the bulk update touches every account row; allow it to run long
		timeout: 5 * time.Minute,
	}
}

// RunMonthlyReset replenishes the giving allowance for every account and
// clears the per-cycle sent counter. Failures are logged and never surfaced
// to users; the next scheduled run proceeds regardless.
func (j *Jobs) RunMonthlyReset() {
	j.logger.Info("starting monthly credit reset job")
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	accounts, err := j.repo.ResetAllAccounts(ctx)
	if err != nil {
		j.logger.Error("monthly credit reset failed", "error", err)
		return
	}

	j.logger.Info("monthly credit reset job finished", "accounts_reset", accounts)
}
