package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// RetryPendingJob periodically re-dispatches paid orders that are still
// waiting for an agent. The underlying command is idempotent, so an
// overlapping manual invocation through the operator endpoint is harmless.
type RetryPendingJob struct {
	handler commands.RetryPendingOrdersCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewRetryPendingJob creates the retry job around its command handler.
func NewRetryPendingJob(handler commands.RetryPendingOrdersCommandHandler, logger *slog.Logger) *RetryPendingJob {
	return &RetryPendingJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "retry_pending_job"),
	}
}

// Start schedules the retry pass every 30 seconds.
func (j *RetryPendingJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()

		result, err := j.handler.Handle(ctx, commands.NewRetryPendingOrdersCommand())
		if err != nil {
			j.logger.ErrorContext(ctx, "Retry pass failed", "error", err)
			return
		}

		if result.TotalPending > 0 {
			j.logger.InfoContext(ctx, "Retry pass finished",
				"pending", result.TotalPending,
				"assigned", result.Assigned,
				"skipped", result.Skipped,
				"escalated", result.Escalated,
			)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Retry pending job started (running every 30 seconds)")
	return nil
}

// Stop stops the retry job.
func (j *RetryPendingJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Retry pending job stopped")
}
