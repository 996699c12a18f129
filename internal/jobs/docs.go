// Package jobs provides scheduled background tasks for the dispatch core.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to drive the two batch dispatch passes.
//
// # Available Jobs
//
// 1. RetryPendingJob - Runs every 30 seconds to re-dispatch paid orders still waiting for an agent
// 2. CheckTimeoutsJob - Runs every 30 seconds to revoke unanswered offers and hand the orders on
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(retryPendingHandler, checkTimeoutsHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Both jobs use the cron expression "*/30 * * * * *". The commands they run
// are idempotent, so an overlapping manual invocation through the operator
// endpoints is safe.
//
// # Error Handling
//
// - Pass-level failures are logged; per-order failures are absorbed inside
//   the commands and reported through the pass counters
// - Failed job starts will stop any already running jobs
package jobs
