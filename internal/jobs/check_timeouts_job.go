package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// CheckTimeoutsJob periodically revokes offers that agents never answered
// and hands the orders to the next candidate.
type CheckTimeoutsJob struct {
	handler commands.CheckTimeoutsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewCheckTimeoutsJob creates the timeout sweep job around its command handler.
func NewCheckTimeoutsJob(handler commands.CheckTimeoutsCommandHandler, logger *slog.Logger) *CheckTimeoutsJob {
	return &CheckTimeoutsJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "check_timeouts_job"),
	}
}

// Start schedules the timeout sweep every 30 seconds.
func (j *CheckTimeoutsJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()

		result, err := j.handler.Handle(ctx, commands.NewCheckTimeoutsCommand())
		if err != nil {
			j.logger.ErrorContext(ctx, "Timeout sweep failed", "error", err)
			return
		}

		if result.TimedOutOrders > 0 {
			j.logger.InfoContext(ctx, "Timeout sweep finished",
				"timedOut", result.TimedOutOrders,
				"reassigned", result.ReassignedCount,
			)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Check timeouts job started (running every 30 seconds)")
	return nil
}

// Stop stops the timeout sweep job.
func (j *CheckTimeoutsJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Check timeouts job stopped")
}
