package commands

import (
	"context"
	"log/slog"
	"time"
)

// VerifyOtpCommandHandler checks the customer's completion code.
// A match flips the order's verified flag, unlocking the delivered
// transition. Repeating the call with the same code stays successful.
type VerifyOtpCommandHandler struct {
	uowFactory OrderUoWFactory
	logger     *slog.Logger
}

// NewVerifyOtpCommandHandler creates a handler for OTP verification.
func NewVerifyOtpCommandHandler(uowFactory OrderUoWFactory, logger *slog.Logger) VerifyOtpCommandHandler {
	return VerifyOtpCommandHandler{
		uowFactory: uowFactory,
		logger:     logger,
	}
}

// Handle processes the verification.
func (h VerifyOtpCommandHandler) Handle(ctx context.Context, command VerifyOtpCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return retryOnConflict(ctx, conflictRetryAttempts, func(ctx context.Context) error {
		return h.handleAttempt(ctx, command)
	})
}

func (h VerifyOtpCommandHandler) handleAttempt(ctx context.Context, command VerifyOtpCommand) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, command.OrderID())
	if err != nil {
		return err
	}

	if err = o.VerifyOtp(command.Code(), time.Now()); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "delivery OTP verified", "order_id", o.ID().String())
	return nil
}
