package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// conflictRetryAttempts bounds how often a handler reloads and reapplies
// after a version-check conflict before surfacing the error.
const conflictRetryAttempts = 3

// retryOnConflict runs op, retrying on optimistic-concurrency conflicts.
// Each attempt must open its own unit of work inside op so the reload sees
// fresh state.
func retryOnConflict(ctx context.Context, attempts int, op func(ctx context.Context) error) error {
	var err error
	for range attempts {
		err = op(ctx)
		if !errors.Is(err, errs.ErrConcurrencyConflict) {
			return err
		}
	}
	return err
}

// offerNextAgent selects the best available agent for the order, records the
// offer on the aggregate, and reserves the agent's capacity. The reservation
// is atomic and capacity-guarded: when a concurrent pass exhausted the picked
// agent's capacity first, the offer is abandoned with ErrNoEligibleAgent and
// the caller's transaction discards the aggregate mutation.
func offerNextAgent(
	ctx context.Context,
	uow UoW,
	selector services.AgentSelector,
	maxConcurrent int,
	o *order.Order,
	now time.Time,
	exclude ...kernel.UUID,
) (*agent.DeliveryAgent, error) {
	candidates, err := uow.AgentRepository().GetAllAvailable(ctx)
	if err != nil {
		return nil, err
	}

	picked, err := selector.Select(o, candidates, now, exclude...)
	if err != nil {
		return nil, err
	}

	// reserve capacity before touching the aggregate so a lost capacity race
	// leaves the order unmutated
	reserved, err := uow.AgentRepository().IncrementAssignedOrders(ctx, picked.ID(), maxConcurrent)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, services.ErrNoEligibleAgent
	}

	if err = o.Assign(picked.ID(), now); err != nil {
		return nil, err
	}

	return picked, nil
}

// orderEvent builds the notification payload for the order's current state.
func orderEvent(o *order.Order, reason string) ports.OrderEvent {
	var agentID *string
	if o.AgentID() != nil {
		s := o.AgentID().String()
		agentID = &s
	}
	return ports.OrderEvent{
		OrderID:       o.ID(),
		Status:        o.Status().String(),
		AgentID:       agentID,
		AgentResponse: o.AgentResponse().String(),
		Reason:        reason,
	}
}

// notifyAgent publishes to the agent channel, logging and swallowing failures.
func notifyAgent(
	ctx context.Context,
	logger *slog.Logger,
	publisher ports.NotificationPublisher,
	agentID kernel.UUID,
	event ports.OrderEvent,
) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishOrderEvent(ctx, agentID, event); err != nil {
		logger.WarnContext(ctx, "agent notification failed",
			"agent_id", agentID.String(), "order_id", event.OrderID.String(), "error", err)
	}
}

// notifySeller publishes to the seller channel, logging and swallowing failures.
func notifySeller(
	ctx context.Context,
	logger *slog.Logger,
	publisher ports.NotificationPublisher,
	sellerID kernel.UUID,
	event ports.OrderEvent,
) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishSellerEvent(ctx, sellerID, event); err != nil {
		logger.WarnContext(ctx, "seller notification failed",
			"seller_id", sellerID.String(), "order_id", event.OrderID.String(), "error", err)
	}
}

// notifyAdmin publishes to the operations channel, logging and swallowing failures.
func notifyAdmin(
	ctx context.Context,
	logger *slog.Logger,
	publisher ports.NotificationPublisher,
	event ports.OrderEvent,
) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishAdminEvent(ctx, event); err != nil {
		logger.WarnContext(ctx, "admin notification failed",
			"order_id", event.OrderID.String(), "error", err)
	}
}
