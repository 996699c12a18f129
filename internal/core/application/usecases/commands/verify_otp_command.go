package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrVerifyOtpCommandIsNotConstructed = errors.New(
	"VerifyOtpCommand must be created via NewVerifyOtpCommand constructor",
)

// VerifyOtpCommand represents the customer's completion code being checked
// at the door before the agent can mark the order delivered.
type VerifyOtpCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	code    string

	guard guard.ConstructorGuard
}

// NewVerifyOtpCommand creates a command to verify the completion code.
func NewVerifyOtpCommand(orderID kernel.UUID, code string) (VerifyOtpCommand, error) {
	command := VerifyOtpCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setOrderID(orderID),
		command.setCode(code),
	); err != nil {
		return VerifyOtpCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c VerifyOtpCommand) Validate() error {
	return c.guard.Validate(ErrVerifyOtpCommandIsNotConstructed)
}

// OrderID returns the order the code belongs to.
func (c VerifyOtpCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Code returns the supplied completion code.
func (c VerifyOtpCommand) Code() string {
	return c.code
}

func (c *VerifyOtpCommand) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.orderID = id
	return nil
}

func (c *VerifyOtpCommand) setCode(code string) error {
	if code == "" {
		return errs.NewValueIsRequiredError("otp")
	}

	c.code = code
	return nil
}
