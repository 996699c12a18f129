package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

// retryBatchSize bounds how many pending orders one pass works through.
const retryBatchSize = 100

// RetryPendingOrdersCommandHandler orchestrates the periodic dispatch pass.
//
// Each order in the batch gets its own unit of work: a failure on one order
// rolls back that order alone and the pass continues. Notifications go out
// after the order's transaction commits and are best effort.
type RetryPendingOrdersCommandHandler struct {
	uowFactory UoWFactory
	selector   services.AgentSelector
	settings   services.DispatchSettings
	publisher  ports.NotificationPublisher
	logger     *slog.Logger
}

// NewRetryPendingOrdersCommandHandler creates a handler for dispatch passes.
func NewRetryPendingOrdersCommandHandler(
	uowFactory UoWFactory,
	selector services.AgentSelector,
	settings services.DispatchSettings,
	publisher ports.NotificationPublisher,
	logger *slog.Logger,
) RetryPendingOrdersCommandHandler {
	return RetryPendingOrdersCommandHandler{
		uowFactory: uowFactory,
		selector:   selector,
		settings:   settings,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle runs one dispatch pass and reports how the batch resolved.
func (h RetryPendingOrdersCommandHandler) Handle(
	ctx context.Context,
	command RetryPendingOrdersCommand,
) (RetryPendingOrdersResult, error) {
	if err := command.Validate(); err != nil {
		return RetryPendingOrdersResult{}, err
	}

	pending, err := h.loadPendingBatch(ctx)
	if err != nil {
		return RetryPendingOrdersResult{}, err
	}

	result := RetryPendingOrdersResult{TotalPending: len(pending)}
	now := time.Now()

	for _, id := range pending {
		outcome, dispatchErr := h.dispatchOne(ctx, id, now)
		if dispatchErr != nil {
			h.logger.ErrorContext(ctx, "dispatch pass failed for order",
				"order_id", id.String(), "error", dispatchErr)
			result.Skipped++
			continue
		}

		switch outcome {
		case dispatchAssigned:
			result.Assigned++
		case dispatchEscalated:
			result.Escalated++
		default:
			result.Skipped++
		}
	}

	return result, nil
}

type dispatchOutcome int

const (
	dispatchSkipped dispatchOutcome = iota
	dispatchAssigned
	dispatchEscalated
)

// loadPendingBatch snapshots the IDs of the orders this pass will work
// through. Each order is then re-read inside its own transaction, so a stale
// snapshot entry simply resolves as skipped.
func (h RetryPendingOrdersCommandHandler) loadPendingBatch(ctx context.Context) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders, err := uow.OrderRepository().GetPendingUnassigned(ctx, retryBatchSize)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID())
	}
	return ids, nil
}

func (h RetryPendingOrdersCommandHandler) dispatchOne(
	ctx context.Context,
	orderID kernel.UUID,
	now time.Time,
) (dispatchOutcome, error) {
	var outcome dispatchOutcome

	err := retryOnConflict(ctx, conflictRetryAttempts, func(ctx context.Context) error {
		var opErr error
		outcome, opErr = h.dispatchOneAttempt(ctx, orderID, now)
		return opErr
	})
	return outcome, err
}

func (h RetryPendingOrdersCommandHandler) dispatchOneAttempt(
	ctx context.Context,
	orderID kernel.UUID,
	now time.Time,
) (dispatchOutcome, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return dispatchSkipped, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return dispatchSkipped, err
	}

	// re-check under the transaction: the snapshot may be stale
	if !o.IsDispatchable() {
		return dispatchSkipped, nil
	}
	if o.IsCooledDown(h.settings.OrderRetryCooldown, now) {
		return dispatchSkipped, nil
	}

	if o.Attempts() >= h.settings.MaxRetryAttempts {
		return h.escalate(ctx, uow, o, now)
	}

	picked, err := offerNextAgent(ctx, uow, h.selector, h.settings.MaxConcurrentDeliveries, o, now)
	if errors.Is(err, services.ErrNoEligibleAgent) {
		return dispatchSkipped, nil
	}
	if err != nil {
		return dispatchSkipped, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return dispatchSkipped, err
	}
	if err = uow.Commit(ctx); err != nil {
		return dispatchSkipped, err
	}

	h.logger.InfoContext(ctx, "order offered to agent",
		"order_id", o.ID().String(), "agent_id", picked.ID().String(), "attempt", o.Attempts())
	notifyAgent(ctx, h.logger, h.publisher, picked.ID(), orderEvent(o, ""))

	return dispatchAssigned, nil
}

func (h RetryPendingOrdersCommandHandler) escalate(
	ctx context.Context,
	uow UoW,
	o *order.Order,
	now time.Time,
) (dispatchOutcome, error) {
	reason := fmt.Sprintf("No delivery agents available after %d attempts", o.Attempts())
	if err := o.Escalate(reason, now); err != nil {
		return dispatchSkipped, err
	}
	if err := uow.OrderRepository().Update(ctx, o); err != nil {
		return dispatchSkipped, err
	}
	if err := uow.Commit(ctx); err != nil {
		return dispatchSkipped, err
	}

	h.logger.WarnContext(ctx, "order escalated",
		"order_id", o.ID().String(), "reason", reason)
	event := orderEvent(o, reason)
	notifyAdmin(ctx, h.logger, h.publisher, event)
	notifySeller(ctx, h.logger, h.publisher, o.SellerID(), event)

	return dispatchEscalated, nil
}
