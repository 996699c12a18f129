package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrRetryPendingOrdersCommandIsNotConstructed = errors.New(
	"RetryPendingOrdersCommand must be created via NewRetryPendingOrdersCommand constructor",
)

// RetryPendingOrdersCommand triggers one dispatch pass over the pool of paid,
// unassigned orders. Each pass either offers an order to the best available
// agent, skips it (cooldown or nobody eligible), or escalates it once the
// retry budget is exhausted.
//
// The command is parameterless and idempotent: running passes back to back,
// or from overlapping schedulers, converges on the same assignments.
type RetryPendingOrdersCommand struct {
	guard guard.ConstructorGuard
}

// NewRetryPendingOrdersCommand creates a new command to trigger a dispatch pass.
func NewRetryPendingOrdersCommand() RetryPendingOrdersCommand {
	return RetryPendingOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *RetryPendingOrdersCommand) Validate() error {
	return c.guard.Validate(
		ErrRetryPendingOrdersCommandIsNotConstructed,
	)
}

// RetryPendingOrdersResult summarizes one dispatch pass. Every order the pass
// saw lands in exactly one bucket: Assigned + Skipped + Escalated equals
// TotalPending.
type RetryPendingOrdersResult struct {
	TotalPending int
	Assigned     int
	Skipped      int
	Escalated    int
}
