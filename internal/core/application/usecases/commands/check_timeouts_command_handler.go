package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// timeoutBatchSize bounds how many unanswered offers one sweep works through.
const timeoutBatchSize = 100

// CheckTimeoutsCommandHandler revokes offers that went unanswered past the
// assignment timeout. Like the dispatch pass, each order gets its own unit of
// work so failures stay isolated.
//
// A timed-out order is immediately re-offered when possible. The agent
// cooldown naturally excludes the agent who just let the offer lapse; no
// order-level cooldown applies, so a timed-out order does not sit idle.
type CheckTimeoutsCommandHandler struct {
	uowFactory UoWFactory
	selector   services.AgentSelector
	settings   services.DispatchSettings
	publisher  ports.NotificationPublisher
	logger     *slog.Logger
}

// NewCheckTimeoutsCommandHandler creates a handler for timeout sweeps.
func NewCheckTimeoutsCommandHandler(
	uowFactory UoWFactory,
	selector services.AgentSelector,
	settings services.DispatchSettings,
	publisher ports.NotificationPublisher,
	logger *slog.Logger,
) CheckTimeoutsCommandHandler {
	return CheckTimeoutsCommandHandler{
		uowFactory: uowFactory,
		selector:   selector,
		settings:   settings,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle runs one timeout sweep and reports how many offers were revoked and
// how many orders found a new agent in the same sweep.
func (h CheckTimeoutsCommandHandler) Handle(
	ctx context.Context,
	command CheckTimeoutsCommand,
) (CheckTimeoutsResult, error) {
	if err := command.Validate(); err != nil {
		return CheckTimeoutsResult{}, err
	}

	awaiting, err := h.loadAwaitingBatch(ctx)
	if err != nil {
		return CheckTimeoutsResult{}, err
	}

	result := CheckTimeoutsResult{}
	now := time.Now()

	for _, id := range awaiting {
		timedOut, reassigned, sweepErr := h.sweepOne(ctx, id, now)
		if sweepErr != nil {
			h.logger.ErrorContext(ctx, "timeout sweep failed for order",
				"order_id", id.String(), "error", sweepErr)
			continue
		}
		if timedOut {
			result.TimedOutOrders++
		}
		if reassigned {
			result.ReassignedCount++
		}
	}

	return result, nil
}

func (h CheckTimeoutsCommandHandler) loadAwaitingBatch(ctx context.Context) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders, err := uow.OrderRepository().GetAwaitingResponse(ctx, timeoutBatchSize)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID())
	}
	return ids, nil
}

func (h CheckTimeoutsCommandHandler) sweepOne(
	ctx context.Context,
	orderID kernel.UUID,
	now time.Time,
) (timedOut bool, reassigned bool, err error) {
	err = retryOnConflict(ctx, conflictRetryAttempts, func(ctx context.Context) error {
		var opErr error
		timedOut, reassigned, opErr = h.sweepOneAttempt(ctx, orderID, now)
		return opErr
	})
	return timedOut, reassigned, err
}

func (h CheckTimeoutsCommandHandler) sweepOneAttempt(
	ctx context.Context,
	orderID kernel.UUID,
	now time.Time,
) (bool, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return false, false, err
	}

	pending := o.PendingAssignment()
	if pending == nil || now.Sub(pending.AssignedAt()) < h.settings.AssignmentTimeout {
		return false, false, nil
	}

	staleAgent, err := o.MarkOfferTimedOut(now)
	if err != nil {
		return false, false, err
	}
	if err = uow.AgentRepository().DecrementAssignedOrders(ctx, staleAgent); err != nil {
		return false, false, err
	}

	// try to hand the order straight to the next agent; the per-order agent
	// cooldown keeps the one who just lapsed out of the running
	reassigned := false
	picked, err := offerNextAgent(ctx, uow, h.selector, h.settings.MaxConcurrentDeliveries, o, now)
	switch {
	case errors.Is(err, services.ErrNoEligibleAgent):
		if err = o.ReleaseAgent(); err != nil {
			return false, false, err
		}
	case err != nil:
		return false, false, err
	default:
		reassigned = true
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return false, false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, false, err
	}

	h.logger.InfoContext(ctx, "offer timed out",
		"order_id", o.ID().String(), "stale_agent_id", staleAgent.String(), "reassigned", reassigned)
	if reassigned {
		notifyAgent(ctx, h.logger, h.publisher, picked.ID(), orderEvent(o, ""))
	}

	return true, reassigned, nil
}
