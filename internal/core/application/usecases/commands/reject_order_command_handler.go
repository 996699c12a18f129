package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// RejectOrderCommandHandler processes an agent declining an offered delivery.
// The declined offer is resolved in the ledger, the agent's capacity
// released, and the order immediately re-offered to the next best agent,
// explicitly excluding the one who just declined. When nobody else is
// eligible the order returns to the pending pool for the next dispatch pass.
type RejectOrderCommandHandler struct {
	uowFactory UoWFactory
	selector   services.AgentSelector
	settings   services.DispatchSettings
	publisher  ports.NotificationPublisher
	logger     *slog.Logger
}

// NewRejectOrderCommandHandler creates a handler for offer rejection.
func NewRejectOrderCommandHandler(
	uowFactory UoWFactory,
	selector services.AgentSelector,
	settings services.DispatchSettings,
	publisher ports.NotificationPublisher,
	logger *slog.Logger,
) RejectOrderCommandHandler {
	return RejectOrderCommandHandler{
		uowFactory: uowFactory,
		selector:   selector,
		settings:   settings,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle processes the rejection.
func (h RejectOrderCommandHandler) Handle(ctx context.Context, command RejectOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return retryOnConflict(ctx, conflictRetryAttempts, func(ctx context.Context) error {
		return h.handleAttempt(ctx, command)
	})
}

func (h RejectOrderCommandHandler) handleAttempt(ctx context.Context, command RejectOrderCommand) error {
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
	if err = o.RejectOffer(command.AgentID(), now); err != nil {
		return err
	}
	if err = uow.AgentRepository().DecrementAssignedOrders(ctx, command.AgentID()); err != nil {
		return err
	}

	reassigned := false
	picked, err := offerNextAgent(
		ctx, uow, h.selector, h.settings.MaxConcurrentDeliveries, o, now, command.AgentID(),
	)
	switch {
	case errors.Is(err, services.ErrNoEligibleAgent):
		if err = o.ReleaseAgent(); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		reassigned = true
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "order offer rejected",
		"order_id", o.ID().String(), "agent_id", command.AgentID().String(),
		"reason", command.Reason(), "reassigned", reassigned)
	if reassigned {
		notifyAgent(ctx, h.logger, h.publisher, picked.ID(), orderEvent(o, ""))
	}
	notifySeller(ctx, h.logger, h.publisher, o.SellerID(), orderEvent(o, command.Reason()))

	return nil
}
