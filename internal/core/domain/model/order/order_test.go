package order_test

import (
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func newPaidOrder(t *testing.T) *order.Order {
	t.Helper()

	payment, err := order.NewPayment(order.PaymentCard, 450, order.PaymentPaid)
	require.NoError(t, err)

	loc, err := kernel.NewGeoPoint(12.9716, 77.5946)
	require.NoError(t, err)
	addr, err := order.NewAddress("42 MG Road, Bangalore", &loc)
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), payment, addr, 40, true, baseTime)
	require.NoError(t, err)
	return o
}

func newAcceptedOrder(t *testing.T, agentID kernel.UUID) *order.Order {
	t.Helper()

	o := newPaidOrder(t)
	require.NoError(t, o.Assign(agentID, baseTime))
	require.NoError(t, o.Accept(agentID, baseTime.Add(time.Minute)))
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("should create pending unassigned order", func(t *testing.T) {
		o := newPaidOrder(t)

		require.NoError(t, o.Validate())
		assert.Equal(t, order.Pending, o.Status())
		assert.Nil(t, o.AgentID())
		assert.Equal(t, order.ResponseNone, o.AgentResponse())
		assert.Empty(t, o.Assignments())
		assert.Zero(t, o.Attempts())
		assert.True(t, o.RequiresOtp())
		assert.True(t, o.IsDispatchable())
	})

	t.Run("should fail with invalid order ID", func(t *testing.T) {
		var invalidID kernel.UUID
		payment, _ := order.NewPayment(order.PaymentCard, 450, order.PaymentPaid)

		o, err := order.NewOrder(invalidID, kernel.NewUUID(), payment, order.Address{}, 40, true, baseTime)

		require.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "UUID must be created")
	})

	t.Run("should fail with negative delivery charge", func(t *testing.T) {
		payment, _ := order.NewPayment(order.PaymentCard, 450, order.PaymentPaid)

		o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), payment, order.Address{}, -5, true, baseTime)

		require.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "deliveryCharge")
	})

	t.Run("should fail with zero created time", func(t *testing.T) {
		payment, _ := order.NewPayment(order.PaymentCard, 450, order.PaymentPaid)

		o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), payment, order.Address{}, 40, true, time.Time{})

		require.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "createdAt")
	})

	t.Run("should fail validation for zero value", func(t *testing.T) {
		var o order.Order
		assert.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
	})
}

func TestOrderAssign(t *testing.T) {
	t.Run("should attach agent and record pending offer", func(t *testing.T) {
		o := newPaidOrder(t)
		agentID := kernel.NewUUID()

		err := o.Assign(agentID, baseTime)

		require.NoError(t, err)
		assert.Equal(t, order.Assigned, o.Status())
		require.NotNil(t, o.AgentID())
		assert.True(t, o.AgentID().IsEqual(agentID))
		assert.Equal(t, order.ResponsePending, o.AgentResponse())
		assert.Equal(t, 1, o.Attempts())
		require.NotNil(t, o.PendingAssignment())
		assert.True(t, o.PendingAssignment().AgentID().IsEqual(agentID))
		assert.False(t, o.IsDispatchable())
	})

	t.Run("should reject second offer while one is pending", func(t *testing.T) {
		o := newPaidOrder(t)
		require.NoError(t, o.Assign(kernel.NewUUID(), baseTime))

		err := o.Assign(kernel.NewUUID(), baseTime.Add(time.Minute))

		assert.ErrorIs(t, err, order.ErrPendingOfferExists)
		assert.Equal(t, 1, o.Attempts())
	})

	t.Run("should allow reassignment after offer resolved", func(t *testing.T) {
		o := newPaidOrder(t)
		first := kernel.NewUUID()
		require.NoError(t, o.Assign(first, baseTime))
		require.NoError(t, o.RejectOffer(first, baseTime.Add(time.Minute)))

		second := kernel.NewUUID()
		err := o.Assign(second, baseTime.Add(2*time.Minute))

		require.NoError(t, err)
		assert.Equal(t, 2, o.Attempts())
		assert.True(t, o.AgentID().IsEqual(second))
		assert.Equal(t, order.ResponsePending, o.AgentResponse())
	})

	t.Run("should fail on delivered order", func(t *testing.T) {
		agentID := kernel.NewUUID()
		o := newAcceptedOrder(t, agentID)
		require.NoError(t, o.PickUp(agentID, baseTime))
		require.NoError(t, o.StartTransit(agentID))
		_, err := o.GenerateOtp(baseTime)
		require.NoError(t, err)
		require.NoError(t, o.VerifyOtp(o.OtpCode(), baseTime))
		require.NoError(t, o.Deliver(agentID, baseTime))

		err = o.Assign(kernel.NewUUID(), baseTime)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status")
	})
}

func TestOrderAccept(t *testing.T) {
	t.Run("should resolve offer and move to accepted", func(t *testing.T) {
		o := newPaidOrder(t)
		agentID := kernel.NewUUID()
		require.NoError(t, o.Assign(agentID, baseTime))

		err := o.Accept(agentID, baseTime.Add(time.Minute))

		require.NoError(t, err)
		assert.Equal(t, order.Accepted, o.Status())
		assert.Equal(t, order.ResponseAccepted, o.AgentResponse())
		assert.Nil(t, o.PendingAssignment())
		assert.Equal(t, order.ResponseAccepted, o.LatestAssignment().Response())
		assert.True(t, o.IsAcceptedBy(agentID))
	})

	t.Run("should fail for a different agent", func(t *testing.T) {
		o := newPaidOrder(t)
		require.NoError(t, o.Assign(kernel.NewUUID(), baseTime))

		err := o.Accept(kernel.NewUUID(), baseTime)

		assert.ErrorIs(t, err, order.ErrAgentMismatch)
		assert.Equal(t, order.Assigned, o.Status())
	})

	t.Run("should fail on pending order", func(t *testing.T) {
		o := newPaidOrder(t)

		err := o.Accept(kernel.NewUUID(), baseTime)

		assert.ErrorIs(t, err, order.ErrAgentMismatch)
	})
}

func TestOrderRejectOffer(t *testing.T) {
	t.Run("should resolve offer keeping order assigned", func(t *testing.T) {
		o := newPaidOrder(t)
		agentID := kernel.NewUUID()
		require.NoError(t, o.Assign(agentID, baseTime))

		err := o.RejectOffer(agentID, baseTime.Add(time.Minute))

		require.NoError(t, err)
		assert.Equal(t, order.Assigned, o.Status())
		assert.Equal(t, order.ResponseRejected, o.AgentResponse())
		assert.Nil(t, o.PendingAssignment())
	})

	t.Run("should fail when no offer is pending", func(t *testing.T) {
		o := newPaidOrder(t)
		agentID := kernel.NewUUID()
		require.NoError(t, o.Assign(agentID, baseTime))
		require.NoError(t, o.RejectOffer(agentID, baseTime))

		err := o.RejectOffer(agentID, baseTime)

		assert.ErrorIs(t, err, order.ErrNoPendingOffer)
	})
}

func TestOrderMarkOfferTimedOut(t *testing.T) {
	t.Run("should resolve offer and return stale agent", func(t *testing.T) {
		o := newPaidOrder(t)
		agentID := kernel.NewUUID()
		require.NoError(t, o.Assign(agentID, baseTime))

		stale, err := o.MarkOfferTimedOut(baseTime.Add(3 * time.Minute))

		require.NoError(t, err)
		assert.True(t, stale.IsEqual(agentID))
		assert.Equal(t, order.ResponseTimeout, o.AgentResponse())
		assert.Equal(t, order.Assigned, o.Status())
		assert.Nil(t, o.PendingAssignment())
	})

	t.Run("should fail when offer already accepted", func(t *testing.T) {
		o := newAcceptedOrder(t, kernel.NewUUID())

		_, err := o.MarkOfferTimedOut(baseTime)

		assert.ErrorIs(t, err, order.ErrNoPendingOffer)
	})
}

func TestOrderReleaseAgent(t *testing.T) {
	t.Run("should return order to pending pool", func(t *testing.T) {
		o := newPaidOrder(t)
		agentID := kernel.NewUUID()
		require.NoError(t, o.Assign(agentID, baseTime))
		_, err := o.MarkOfferTimedOut(baseTime.Add(3 * time.Minute))
		require.NoError(t, err)

		err = o.ReleaseAgent()

		require.NoError(t, err)
		assert.Equal(t, order.Pending, o.Status())
		assert.Nil(t, o.AgentID())
		assert.Equal(t, 1, o.Attempts())
		assert.True(t, o.IsDispatchable())
	})

	t.Run("should fail while offer is unanswered", func(t *testing.T) {
		o := newPaidOrder(t)
		require.NoError(t, o.Assign(kernel.NewUUID(), baseTime))

		err := o.ReleaseAgent()

		assert.ErrorIs(t, err, order.ErrPendingOfferExists)
	})
}

func TestOrderDeliveryProgress(t *testing.T) {
	t.Run("should walk accepted through delivered", func(t *testing.T) {
		agentID := kernel.NewUUID()
		o := newAcceptedOrder(t, agentID)
		pickupTime := baseTime.Add(10 * time.Minute)
		deliverTime := baseTime.Add(30 * time.Minute)

		require.NoError(t, o.PickUp(agentID, pickupTime))
		assert.Equal(t, order.PickedUp, o.Status())
		require.NotNil(t, o.PickedUpAt())
		assert.Equal(t, pickupTime, *o.PickedUpAt())

		require.NoError(t, o.StartTransit(agentID))
		assert.Equal(t, order.InTransit, o.Status())

		code, err := o.GenerateOtp(deliverTime)
		require.NoError(t, err)
		require.NoError(t, o.VerifyOtp(code, deliverTime))

		require.NoError(t, o.Deliver(agentID, deliverTime))
		assert.Equal(t, order.Delivered, o.Status())
		require.NotNil(t, o.DeliveredAt())
		assert.Equal(t, deliverTime, *o.DeliveredAt())
	})

	t.Run("should refuse delivery with unverified OTP", func(t *testing.T) {
		agentID := kernel.NewUUID()
		o := newAcceptedOrder(t, agentID)
		require.NoError(t, o.PickUp(agentID, baseTime))
		require.NoError(t, o.StartTransit(agentID))
		_, err := o.GenerateOtp(baseTime)
		require.NoError(t, err)

		err = o.Deliver(agentID, baseTime)

		assert.ErrorIs(t, err, order.ErrOtpNotVerified)
		assert.Equal(t, order.InTransit, o.Status())
	})

	t.Run("should deliver without OTP when order does not require it", func(t *testing.T) {
		payment, err := order.NewPayment(order.PaymentCard, 450, order.PaymentPaid)
		require.NoError(t, err)
		o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), payment, order.Address{}, 40, false, baseTime)
		require.NoError(t, err)
		agentID := kernel.NewUUID()
		require.NoError(t, o.Assign(agentID, baseTime))
		require.NoError(t, o.Accept(agentID, baseTime))
		require.NoError(t, o.PickUp(agentID, baseTime))
		require.NoError(t, o.StartTransit(agentID))

		err = o.Deliver(agentID, baseTime)

		require.NoError(t, err)
		assert.Equal(t, order.Delivered, o.Status())
	})

	t.Run("should settle COD payment on delivery", func(t *testing.T) {
		payment, err := order.NewPayment(order.PaymentCOD, 450, order.PaymentPending)
		require.NoError(t, err)
		o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), payment, order.Address{}, 40, false, baseTime)
		require.NoError(t, err)
		agentID := kernel.NewUUID()
		require.NoError(t, o.Assign(agentID, baseTime))
		require.NoError(t, o.Accept(agentID, baseTime))
		require.NoError(t, o.PickUp(agentID, baseTime))
		require.NoError(t, o.StartTransit(agentID))

		require.NoError(t, o.Deliver(agentID, baseTime))

		assert.Equal(t, order.PaymentPaid, o.Payment().Status())
		assert.True(t, o.Payment().IsPaid())
	})

	t.Run("should reject out of order transitions", func(t *testing.T) {
		agentID := kernel.NewUUID()
		o := newAcceptedOrder(t, agentID)

		err := o.StartTransit(agentID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status")
		assert.Equal(t, order.Accepted, o.Status())
	})
}

func TestOrderCancel(t *testing.T) {
	t.Run("should cancel pending order without agent", func(t *testing.T) {
		o := newPaidOrder(t)

		released, err := o.Cancel(baseTime)

		require.NoError(t, err)
		assert.Nil(t, released)
		assert.Equal(t, order.Cancelled, o.Status())
	})

	t.Run("should release attached agent and resolve live offer", func(t *testing.T) {
		o := newPaidOrder(t)
		agentID := kernel.NewUUID()
		require.NoError(t, o.Assign(agentID, baseTime))

		released, err := o.Cancel(baseTime.Add(time.Minute))

		require.NoError(t, err)
		require.NotNil(t, released)
		assert.True(t, released.IsEqual(agentID))
		assert.Nil(t, o.AgentID())
		assert.Nil(t, o.PendingAssignment())
		assert.Equal(t, order.Cancelled, o.Status())
	})

	t.Run("should fail on delivered order", func(t *testing.T) {
		payment, _ := order.NewPayment(order.PaymentCard, 450, order.PaymentPaid)
		o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), payment, order.Address{}, 40, false, baseTime)
		require.NoError(t, err)
		agentID := kernel.NewUUID()
		require.NoError(t, o.Assign(agentID, baseTime))
		require.NoError(t, o.Accept(agentID, baseTime))
		require.NoError(t, o.PickUp(agentID, baseTime))
		require.NoError(t, o.StartTransit(agentID))
		require.NoError(t, o.Deliver(agentID, baseTime))

		_, err = o.Cancel(baseTime)

		require.Error(t, err)
	})
}

func TestOrderEscalate(t *testing.T) {
	t.Run("should escalate pending order with reason", func(t *testing.T) {
		o := newPaidOrder(t)
		when := baseTime.Add(time.Hour)

		err := o.Escalate("No delivery agents available after 10 attempts", when)

		require.NoError(t, err)
		assert.Equal(t, order.Escalated, o.Status())
		assert.Equal(t, "No delivery agents available after 10 attempts", o.EscalationReason())
		require.NotNil(t, o.EscalatedAt())
		assert.Equal(t, when, *o.EscalatedAt())
	})

	t.Run("should require a reason", func(t *testing.T) {
		o := newPaidOrder(t)

		err := o.Escalate("", baseTime)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "reason")
	})

	t.Run("should fail on assigned order", func(t *testing.T) {
		o := newPaidOrder(t)
		require.NoError(t, o.Assign(kernel.NewUUID(), baseTime))

		err := o.Escalate("stuck", baseTime)

		require.Error(t, err)
	})
}

func TestOrderOtp(t *testing.T) {
	t.Run("should generate four digit code during active delivery", func(t *testing.T) {
		o := newAcceptedOrder(t, kernel.NewUUID())

		code, err := o.GenerateOtp(baseTime)

		require.NoError(t, err)
		assert.Len(t, code, 4)
		assert.GreaterOrEqual(t, code, "1000")
		assert.LessOrEqual(t, code, "9999")
		assert.False(t, o.OtpVerified())
	})

	t.Run("should be idempotent while unverified", func(t *testing.T) {
		o := newAcceptedOrder(t, kernel.NewUUID())
		first, err := o.GenerateOtp(baseTime)
		require.NoError(t, err)

		second, err := o.GenerateOtp(baseTime.Add(time.Minute))

		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("should refuse generation on pending order", func(t *testing.T) {
		o := newPaidOrder(t)

		_, err := o.GenerateOtp(baseTime)

		assert.ErrorIs(t, err, order.ErrOtpNotActive)
	})

	t.Run("should verify matching code once", func(t *testing.T) {
		o := newAcceptedOrder(t, kernel.NewUUID())
		code, err := o.GenerateOtp(baseTime)
		require.NoError(t, err)
		when := baseTime.Add(5 * time.Minute)

		require.NoError(t, o.VerifyOtp(code, when))

		assert.True(t, o.OtpVerified())
		require.NotNil(t, o.OtpVerifiedAt())
		assert.Equal(t, when, *o.OtpVerifiedAt())

		// repeated verification of the same code stays successful
		require.NoError(t, o.VerifyOtp(code, when.Add(time.Minute)))
		assert.Equal(t, when, *o.OtpVerifiedAt())
	})

	t.Run("should reject wrong code", func(t *testing.T) {
		o := newAcceptedOrder(t, kernel.NewUUID())
		code, err := o.GenerateOtp(baseTime)
		require.NoError(t, err)

		wrong := "1234"
		if wrong == code {
			wrong = "4321"
		}
		err = o.VerifyOtp(wrong, baseTime)

		assert.ErrorIs(t, err, order.ErrInvalidOtp)
		assert.False(t, o.OtpVerified())
	})

	t.Run("should reject verification before generation", func(t *testing.T) {
		o := newAcceptedOrder(t, kernel.NewUUID())

		err := o.VerifyOtp("1234", baseTime)

		assert.ErrorIs(t, err, order.ErrOtpNotGenerated)
	})
}

func TestOrderCooldowns(t *testing.T) {
	t.Run("should report cooldown from latest offer", func(t *testing.T) {
		o := newPaidOrder(t)
		agentID := kernel.NewUUID()
		require.NoError(t, o.Assign(agentID, baseTime))
		require.NoError(t, o.RejectOffer(agentID, baseTime))
		require.NoError(t, o.ReleaseAgent())

		assert.True(t, o.IsCooledDown(2*time.Minute, baseTime.Add(time.Minute)))
		assert.False(t, o.IsCooledDown(2*time.Minute, baseTime.Add(3*time.Minute)))
	})

	t.Run("should not cool down an order never offered", func(t *testing.T) {
		o := newPaidOrder(t)

		assert.False(t, o.IsCooledDown(2*time.Minute, baseTime))
	})

	t.Run("should track per agent offer recency", func(t *testing.T) {
		o := newPaidOrder(t)
		agentID := kernel.NewUUID()
		require.NoError(t, o.Assign(agentID, baseTime))
		require.NoError(t, o.RejectOffer(agentID, baseTime))
		require.NoError(t, o.ReleaseAgent())

		assert.True(t, o.WasOfferedWithin(agentID, 5*time.Minute, baseTime.Add(4*time.Minute)))
		assert.False(t, o.WasOfferedWithin(agentID, 5*time.Minute, baseTime.Add(6*time.Minute)))
		assert.False(t, o.WasOfferedWithin(kernel.NewUUID(), 5*time.Minute, baseTime.Add(time.Minute)))
	})
}

func TestOrderPickupPoint(t *testing.T) {
	storeLoc, _ := kernel.NewGeoPoint(12.9716, 77.5946)
	pickupLoc, _ := kernel.NewGeoPoint(12.9352, 77.6245)
	deliveryLoc, _ := kernel.NewGeoPoint(13.08, 77.70)

	t.Run("should prefer store location", func(t *testing.T) {
		deliveryAddr, _ := order.NewAddress("customer street", &deliveryLoc)
		o := restoredWith(t, &storeLoc, order.Address{}, deliveryAddr)

		pt, ok := o.PickupPoint()

		require.True(t, ok)
		assert.True(t, pt.IsEqual(storeLoc))
	})

	t.Run("should fall back to pickup address", func(t *testing.T) {
		pickupAddr, _ := order.NewAddress("store street", &pickupLoc)
		deliveryAddr, _ := order.NewAddress("customer street", &deliveryLoc)
		o := restoredWith(t, nil, pickupAddr, deliveryAddr)

		pt, ok := o.PickupPoint()

		require.True(t, ok)
		assert.True(t, pt.IsEqual(pickupLoc))
	})

	t.Run("should fall back to delivery address last", func(t *testing.T) {
		deliveryAddr, _ := order.NewAddress("customer street", &deliveryLoc)
		o := restoredWith(t, nil, order.Address{}, deliveryAddr)

		pt, ok := o.PickupPoint()

		require.True(t, ok)
		assert.True(t, pt.IsEqual(deliveryLoc))
	})

	t.Run("should report no coordinates", func(t *testing.T) {
		o := restoredWith(t, nil, order.Address{}, order.Address{})

		_, ok := o.PickupPoint()

		assert.False(t, ok)
	})
}

func restoredWith(t *testing.T, store *kernel.GeoPoint, pickup, delivery order.Address) *order.Order {
	t.Helper()

	payment, err := order.NewPayment(order.PaymentCard, 450, order.PaymentPaid)
	require.NoError(t, err)

	o, err := order.RestoreOrder(order.RestoreOrderParams{
		ID:              kernel.NewUUID(),
		Version:         3,
		SellerID:        kernel.NewUUID(),
		Payment:         payment,
		DeliveryCharge:  40,
		StoreLocation:   store,
		PickupAddress:   pickup,
		DeliveryAddress: delivery,
		Status:          order.Pending,
		AgentResponse:   order.ResponseNone,
		CreatedAt:       baseTime,
	})
	require.NoError(t, err)
	return o
}

func TestRestoreOrder(t *testing.T) {
	t.Run("should restore operational state", func(t *testing.T) {
		agentID := kernel.NewUUID()
		respondedAt := baseTime.Add(time.Minute)
		entry, err := order.RestoreAssignment(agentID, baseTime, order.ResponseAccepted, &respondedAt)
		require.NoError(t, err)
		payment, err := order.NewPayment(order.PaymentCOD, 300, order.PaymentPending)
		require.NoError(t, err)

		o, err := order.RestoreOrder(order.RestoreOrderParams{
			ID:            kernel.NewUUID(),
			Version:       7,
			SellerID:      kernel.NewUUID(),
			Payment:       payment,
			Status:        order.Accepted,
			AgentID:       &agentID,
			AgentResponse: order.ResponseAccepted,
			Assignments:   []*order.Assignment{entry},
			RequiresOtp:   true,
			CreatedAt:     baseTime,
		})

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.Equal(t, int64(7), o.Version())
		assert.Equal(t, 1, o.Attempts())
		assert.True(t, o.IsAcceptedBy(agentID))
	})

	t.Run("should reject agent on pending order", func(t *testing.T) {
		agentID := kernel.NewUUID()
		payment, _ := order.NewPayment(order.PaymentCard, 300, order.PaymentPaid)

		_, err := order.RestoreOrder(order.RestoreOrderParams{
			ID:            kernel.NewUUID(),
			Version:       1,
			SellerID:      kernel.NewUUID(),
			Payment:       payment,
			Status:        order.Pending,
			AgentID:       &agentID,
			AgentResponse: order.ResponseNone,
			CreatedAt:     baseTime,
		})

		require.Error(t, err)
	})

	t.Run("should reject two pending ledger entries", func(t *testing.T) {
		agentID := kernel.NewUUID()
		first, err := order.NewAssignment(kernel.NewUUID(), baseTime)
		require.NoError(t, err)
		second, err := order.NewAssignment(agentID, baseTime.Add(time.Minute))
		require.NoError(t, err)
		payment, _ := order.NewPayment(order.PaymentCard, 300, order.PaymentPaid)

		_, err = order.RestoreOrder(order.RestoreOrderParams{
			ID:            kernel.NewUUID(),
			Version:       2,
			SellerID:      kernel.NewUUID(),
			Payment:       payment,
			Status:        order.Assigned,
			AgentID:       &agentID,
			AgentResponse: order.ResponsePending,
			Assignments:   []*order.Assignment{first, second},
			CreatedAt:     baseTime,
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "assignments")
	})
}

func TestOrderOfferRoundTripProperty(t *testing.T) {
	// ledger length equals offers made regardless of how each round resolved
	o := newPaidOrder(t)
	agents := []kernel.UUID{kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()}
	now := baseTime

	require.NoError(t, o.Assign(agents[0], now))
	require.NoError(t, o.RejectOffer(agents[0], now))
	require.NoError(t, o.Assign(agents[1], now.Add(time.Minute)))
	_, err := o.MarkOfferTimedOut(now.Add(4 * time.Minute))
	require.NoError(t, err)
	require.NoError(t, o.Assign(agents[2], now.Add(5*time.Minute)))
	require.NoError(t, o.Accept(agents[2], now.Add(6*time.Minute)))

	assert.Equal(t, 3, o.Attempts())
	for _, a := range o.Assignments() {
		assert.True(t, a.Response().IsResolved())
	}
	assert.True(t, errors.Is(o.Validate(), nil))
}
