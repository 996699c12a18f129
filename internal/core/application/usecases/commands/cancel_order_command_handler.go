package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/ports"
)

// CancelOrderCommandHandler processes an external order cancellation.
// A holding agent's capacity is released and both the agent and the seller
// are notified. Terminal orders cannot be cancelled.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
	publisher  ports.NotificationPublisher
	logger     *slog.Logger
}

// NewCancelOrderCommandHandler creates a handler for order cancellation.
func NewCancelOrderCommandHandler(
	uowFactory UoWFactory,
	publisher ports.NotificationPublisher,
	logger *slog.Logger,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle processes the cancellation.
func (h CancelOrderCommandHandler) Handle(ctx context.Context, command CancelOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return retryOnConflict(ctx, conflictRetryAttempts, func(ctx context.Context) error {
		return h.handleAttempt(ctx, command)
	})
}

func (h CancelOrderCommandHandler) handleAttempt(ctx context.Context, command CancelOrderCommand) error {
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

	released, err := o.Cancel(time.Now())
	if err != nil {
		return err
	}
	if released != nil {
		if err = uow.AgentRepository().DecrementAssignedOrders(ctx, *released); err != nil {
			return err
		}
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "order cancelled",
		"order_id", o.ID().String(), "reason", command.Reason())
	event := orderEvent(o, command.Reason())
	if released != nil {
		notifyAgent(ctx, h.logger, h.publisher, *released, event)
	}
	notifySeller(ctx, h.logger, h.publisher, o.SellerID(), event)

	return nil
}
