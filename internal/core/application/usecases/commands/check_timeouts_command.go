package commands

import (
	"errors"

	"dispatch/internal/pkg/guard"
)

var ErrCheckTimeoutsCommandIsNotConstructed = errors.New(
	"CheckTimeoutsCommand must be created via NewCheckTimeoutsCommand constructor",
)

// CheckTimeoutsCommand triggers one sweep over orders whose offer went
// unanswered past the assignment timeout. Each timed-out offer is resolved,
// the stale agent's capacity released, and the order immediately re-offered
// or returned to the pending pool.
type CheckTimeoutsCommand struct {
	guard guard.ConstructorGuard
}

// NewCheckTimeoutsCommand creates a new command to trigger a timeout sweep.
func NewCheckTimeoutsCommand() CheckTimeoutsCommand {
	return CheckTimeoutsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *CheckTimeoutsCommand) Validate() error {
	return c.guard.Validate(
		ErrCheckTimeoutsCommandIsNotConstructed,
	)
}

// CheckTimeoutsResult summarizes one timeout sweep.
type CheckTimeoutsResult struct {
	TimedOutOrders  int
	ReassignedCount int
}
