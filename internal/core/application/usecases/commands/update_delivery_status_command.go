package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateDeliveryStatusCommandIsNotConstructed = errors.New(
	"UpdateDeliveryStatusCommand must be created via NewUpdateDeliveryStatusCommand constructor",
)

// UpdateDeliveryStatusCommand represents an agent advancing a delivery
// through its lifecycle: picked_up, in_transit, or delivered.
type UpdateDeliveryStatusCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	agentID   kernel.UUID
	newStatus order.Status

	guard guard.ConstructorGuard
}

// NewUpdateDeliveryStatusCommand creates a command to advance a delivery.
// Only the agent-driven progress statuses are accepted; offers and
// cancellations go through their own commands.
func NewUpdateDeliveryStatusCommand(
	orderID kernel.UUID,
	agentID kernel.UUID,
	newStatus order.Status,
) (UpdateDeliveryStatusCommand, error) {
	command := UpdateDeliveryStatusCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setAgentID(agentID),
		command.setNewStatus(newStatus),
	); err != nil {
		return UpdateDeliveryStatusCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateDeliveryStatusCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDeliveryStatusCommandIsNotConstructed)
}

// OrderID returns the order being advanced.
func (c UpdateDeliveryStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// AgentID returns the agent reporting progress.
func (c UpdateDeliveryStatusCommand) AgentID() kernel.UUID {
	return c.agentID
}

// NewStatus returns the requested target status.
func (c UpdateDeliveryStatusCommand) NewStatus() order.Status {
	return c.newStatus
}

func (c *UpdateDeliveryStatusCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.orderID = id
	return nil
}

func (c *UpdateDeliveryStatusCommand) setAgentID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.agentID = id
	return nil
}

func (c *UpdateDeliveryStatusCommand) setNewStatus(s order.Status) error {
	switch s {
	case order.PickedUp, order.InTransit, order.Delivered:
		c.newStatus = s
		return nil
	default:
		return errs.NewValueIsInvalidError("newStatus")
	}
}
