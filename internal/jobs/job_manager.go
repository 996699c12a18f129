package jobs

import (
	"fmt"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	retryPendingJob  *RetryPendingJob
	checkTimeoutsJob *CheckTimeoutsJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	retryPendingHandler commands.RetryPendingOrdersCommandHandler,
	checkTimeoutsHandler commands.CheckTimeoutsCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		retryPendingJob:  NewRetryPendingJob(retryPendingHandler, logger),
		checkTimeoutsJob: NewCheckTimeoutsJob(checkTimeoutsHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.retryPendingJob.Start(); err != nil {
		return fmt.Errorf("failed to start retry pending job: %w", err)
	}

	if err := jm.checkTimeoutsJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.retryPendingJob.Stop()
		return fmt.Errorf("failed to start check timeouts job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.retryPendingJob.Stop()
	jm.checkTimeoutsJob.Stop()
}
