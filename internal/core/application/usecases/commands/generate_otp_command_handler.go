package commands

import (
	"context"
	"log/slog"
	"time"
)

// GenerateOtpCommandHandler issues the delivery-completion code for an order.
// Idempotent while the current code is unverified: repeated calls return the
// same code. Generation is only allowed during an active delivery.
type GenerateOtpCommandHandler struct {
	uowFactory OrderUoWFactory
	logger     *slog.Logger
}

// NewGenerateOtpCommandHandler creates a handler for OTP generation.
func NewGenerateOtpCommandHandler(uowFactory OrderUoWFactory, logger *slog.Logger) GenerateOtpCommandHandler {
	return GenerateOtpCommandHandler{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// Handle issues the code and returns it for out-of-band delivery to the
// customer.
func (h GenerateOtpCommandHandler) Handle(ctx context.Context, command GenerateOtpCommand) (string, error) {
	if err := command.Validate(); err != nil {
		return "", err
	}

	var code string
	err := retryOnConflict(ctx, conflictRetryAttempts, func(ctx context.Context) error {
		var opErr error
		code, opErr = h.handleAttempt(ctx, command)
		return opErr
	})
	return code, err
}

func (h GenerateOtpCommandHandler) handleAttempt(ctx context.Context, command GenerateOtpCommand) (string, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, command.OrderID())
	if err != nil {
		return "", err
	}

	code, err := o.GenerateOtp(time.Now())
	if err != nil {
		return "", err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return "", err
	}
	if err = uow.Commit(ctx); err != nil {
		return "", err
	}

	h.logger.InfoContext(ctx, "delivery OTP issued", "order_id", o.ID().String())
	return code, nil
}
