package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGenerateOtpCommandIsNotConstructed = errors.New(
	"GenerateOtpCommand must be created via NewGenerateOtpCommand constructor",
)

// GenerateOtpCommand requests the delivery-completion code for an order.
// The code is handed to the customer out of band; the agent collects it at
// the door to prove the handover.
type GenerateOtpCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGenerateOtpCommand creates a command to issue or re-issue the code.
func NewGenerateOtpCommand(orderID kernel.UUID) (GenerateOtpCommand, error) {
	command := GenerateOtpCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := command.setOrderID(orderID); err != nil {
		return GenerateOtpCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c GenerateOtpCommand) Validate() error {
	return c.guard.Validate(ErrGenerateOtpCommandIsNotConstructed)
}

// OrderID returns the order the code belongs to.
func (c GenerateOtpCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c *GenerateOtpCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.orderID = id
	return nil
}
