package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// UpdateDeliveryStatusCommandHandler processes agent-reported delivery
// progress.
//
// picked_up stamps the pickup time and makes sure the completion OTP exists.
// delivered enforces the OTP gate, converts the agent's assignment into a
// completion, settles COD payment, and books the agent's delivery earning.
// The earning write is best effort: a delivered order is never rolled back
// over a commission ledger failure.
type UpdateDeliveryStatusCommandHandler struct {
	uowFactory UoWFactory
	commission ports.CommissionRecorder
	publisher  ports.NotificationPublisher
	logger     *slog.Logger
}

// NewUpdateDeliveryStatusCommandHandler creates a handler for delivery progress.
func NewUpdateDeliveryStatusCommandHandler(
	uowFactory UoWFactory,
	commission ports.CommissionRecorder,
	publisher ports.NotificationPublisher,
	logger *slog.Logger,
) UpdateDeliveryStatusCommandHandler {
	return UpdateDeliveryStatusCommandHandler{
		uowFactory: uowFactory,
		commission: commission,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle processes the status update.
func (h UpdateDeliveryStatusCommandHandler) Handle(
	ctx context.Context,
	command UpdateDeliveryStatusCommand,
) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return retryOnConflict(ctx, conflictRetryAttempts, func(ctx context.Context) error {
		return h.handleAttempt(ctx, command)
	})
}

func (h UpdateDeliveryStatusCommandHandler) handleAttempt(
	ctx context.Context,
	command UpdateDeliveryStatusCommand,
) error {
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

	now := time.Now()

	switch command.NewStatus() {
	case order.PickedUp:
		if err = o.PickUp(command.AgentID(), now); err != nil {
			return err
		}
		if _, err = o.GenerateOtp(now); err != nil {
			return err
		}
	case order.InTransit:
		if err = o.StartTransit(command.AgentID()); err != nil {
			return err
		}
	case order.Delivered:
		if err = o.Deliver(command.AgentID(), now); err != nil {
			return err
		}
		if err = uow.AgentRepository().MarkDelivered(ctx, command.AgentID()); err != nil {
			return err
		}
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "delivery status updated",
		"order_id", o.ID().String(), "agent_id", command.AgentID().String(),
		"status", o.Status().String())

	if o.Status() == order.Delivered {
		h.recordEarning(ctx, o, command)
	}
	notifySeller(ctx, h.logger, h.publisher, o.SellerID(), orderEvent(o, ""))

	return nil
}

func (h UpdateDeliveryStatusCommandHandler) recordEarning(
	ctx context.Context,
	o *order.Order,
	command UpdateDeliveryStatusCommand,
) {
	if h.commission == nil {
		return
	}
	err := h.commission.RecordDeliveryEarning(ctx, command.AgentID(), o.ID(), o.DeliveryCharge())
	if err != nil {
		h.logger.WarnContext(ctx, "delivery earning not recorded",
			"order_id", o.ID().String(), "agent_id", command.AgentID().String(), "error", err)
	}
}
