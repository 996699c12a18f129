package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// ErrAgentHasActiveDelivery is returned when an agent tries to accept a
// second order while still working another one. The HTTP layer maps it to a
// conflict response so the app can surface the running delivery.
var ErrAgentHasActiveDelivery = errs.NewPreconditionFailedError(
	"agent", "agent already has an order in active delivery",
)

// AcceptOrderCommandHandler processes an agent taking an offered delivery.
//
// Key behaviors:
//   - Idempotent: re-accepting an order the same agent already holds succeeds
//     without side effects.
//   - Enforces the single-active-delivery rule: an agent may hold several
//     unanswered offers but works one delivery at a time.
//   - Resolves the pickup address on first acceptance: stored store address,
//     else reverse geocoding, else a raw "lat,lng" string.
//   - Ensures the delivery-completion OTP exists once the order is accepted.
type AcceptOrderCommandHandler struct {
	uowFactory UoWFactory
	geocoder   ports.Geocoder
	publisher  ports.NotificationPublisher
	logger     *slog.Logger
}

// NewAcceptOrderCommandHandler creates a handler for offer acceptance.
func NewAcceptOrderCommandHandler(
	uowFactory UoWFactory,
	geocoder ports.Geocoder,
	publisher ports.NotificationPublisher,
	logger *slog.Logger,
) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{
		uowFactory: uowFactory,
		geocoder:   geocoder,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle processes the acceptance.
func (h AcceptOrderCommandHandler) Handle(ctx context.Context, command AcceptOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	return retryOnConflict(ctx, conflictRetryAttempts, func(ctx context.Context) error {
		return h.handleAttempt(ctx, command)
	})
}

func (h AcceptOrderCommandHandler) handleAttempt(ctx context.Context, command AcceptOrderCommand) error {
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

	if o.IsAcceptedBy(command.AgentID()) {
		return nil
	}

	active, err := uow.OrderRepository().CountActiveDeliveries(ctx, command.AgentID())
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrAgentHasActiveDelivery
	}

	now := time.Now()
	if err = o.Accept(command.AgentID(), now); err != nil {
		return err
	}

	h.resolvePickupAddress(ctx, o)

	if _, err = o.GenerateOtp(now); err != nil {
		return err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "order accepted",
		"order_id", o.ID().String(), "agent_id", command.AgentID().String())
	notifySeller(ctx, h.logger, h.publisher, o.SellerID(), orderEvent(o, ""))

	return nil
}

// resolvePickupAddress fills the pickup address the agent navigates to.
// Geocoding failures degrade to a coordinate string; an order with no known
// coordinates keeps its pickup address unset.
func (h AcceptOrderCommandHandler) resolvePickupAddress(ctx context.Context, o *order.Order) {
	if o.PickupAddress().IsSet() {
		return
	}

	point, ok := o.PickupPoint()
	if !ok {
		return
	}

	text := fmt.Sprintf("%.6f,%.6f", point.Lat(), point.Lng())
	if h.geocoder != nil {
		if resolved, err := h.geocoder.ReverseGeocode(ctx, point); err == nil && resolved != "" {
			text = resolved
		} else if err != nil {
			h.logger.WarnContext(ctx, "reverse geocoding failed, using coordinates",
				"order_id", o.ID().String(), "error", err)
		}
	}

	addr, err := order.NewAddress(text, &point)
	if err != nil {
		return
	}
	o.SetPickupAddress(addr)
}
