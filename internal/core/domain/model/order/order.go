package order

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Domain errors for order operations.
var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder or RestoreOrder factory methods.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")
	// ErrAgentMismatch is returned when an agent acts on an order that is
	// assigned to somebody else.
	ErrAgentMismatch = errs.NewPreconditionFailedError("order", "order is assigned to a different agent")
	// ErrPendingOfferExists is returned when a second simultaneous pending
	// offer would be recorded. At most one ledger entry is pending at a time.
	ErrPendingOfferExists = errs.NewPreconditionFailedError("order", "order already has an unanswered offer")
	// ErrNoPendingOffer is returned when resolving an offer that does not exist.
	ErrNoPendingOffer = errs.NewPreconditionFailedError("order", "order has no unanswered offer")
	// ErrOtpNotGenerated is returned by VerifyOtp when no code was ever issued.
	ErrOtpNotGenerated = errs.NewPreconditionFailedError("order", "no OTP was generated for this order")
	// ErrInvalidOtp is returned when the supplied code does not match.
	ErrInvalidOtp = errs.NewValueIsInvalidError("otp")
	// ErrOtpNotVerified rejects the delivered transition while the
	// completion code is unverified. Distinct from a transition error.
	ErrOtpNotVerified = errs.NewPreconditionFailedError("order", "delivery OTP must be verified before completing delivery")
	// ErrOtpNotActive is returned when generating a code outside an active delivery.
	ErrOtpNotActive = errs.NewPreconditionFailedError("order", "OTP can only be generated during an active delivery")
)

// Order represents a delivery order in the dispatch core. It is the aggregate
// root that manages the delivery lifecycle from payment confirmation through
// offer rounds to completion.
//
// Order maintains these invariants:
//   - An agent is attached iff the status is assigned, accepted, picked_up,
//     or in_transit.
//   - At most one ledger entry has a pending response at any time.
//   - The ledger is append-only; its length bounds the retry count.
//   - Status transitions follow the state machine in status.go.
//   - Can only be created through NewOrder or RestoreOrder.
//
// The version field supports optimistic concurrency: repositories persist
// mutations conditionally on the loaded version and report a conflict when
// the stored version moved underneath.
type Order struct {
	id       kernel.UUID
	version  int64
	sellerID kernel.UUID

	payment        Payment
	deliveryCharge float64

	storeLocation   *kernel.GeoPoint
	pickupAddress   Address
	deliveryAddress Address

	status        Status
	agentID       *kernel.UUID
	agentResponse Response
	assignments   []*Assignment

	otpCode       string
	otpVerified   bool
	otpVerifiedAt *time.Time
	requiresOtp   bool

	escalationReason string
	escalatedAt      *time.Time

	createdAt   time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time

	isConstructed bool
}

// NewOrder creates a pending, unassigned Order. Orders enter the dispatch
// core only after payment is confirmed by the order-placement collaborator,
// so the payment record is part of construction.
func NewOrder(
	id kernel.UUID,
	sellerID kernel.UUID,
	payment Payment,
	deliveryAddress Address,
	deliveryCharge float64,
	requiresOtp bool,
	createdAt time.Time,
) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		sellerID.Validate(),
	); err != nil {
		return nil, err
	}
	if deliveryCharge < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("deliveryCharge",
			fmt.Errorf("%f is negative", deliveryCharge))
	}
	if createdAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("createdAt")
	}

	return &Order{
		id:              id,
		version:         1,
		sellerID:        sellerID,
		payment:         payment,
		deliveryCharge:  deliveryCharge,
		deliveryAddress: deliveryAddress,
		status:          Pending,
		agentResponse:   ResponseNone,
		requiresOtp:     requiresOtp,
		createdAt:       createdAt,
		isConstructed:   true,
	}, nil
}

// RestoreOrderParams carries the persisted state of an order for
// reconstruction by repositories.
type RestoreOrderParams struct {
	ID               kernel.UUID
	Version          int64
	SellerID         kernel.UUID
	Payment          Payment
	DeliveryCharge   float64
	StoreLocation    *kernel.GeoPoint
	PickupAddress    Address
	DeliveryAddress  Address
	Status           Status
	AgentID          *kernel.UUID
	AgentResponse    Response
	Assignments      []*Assignment
	OtpCode          string
	OtpVerified      bool
	OtpVerifiedAt    *time.Time
	RequiresOtp      bool
	EscalationReason string
	EscalatedAt      *time.Time
	CreatedAt        time.Time
	PickedUpAt       *time.Time
	DeliveredAt      *time.Time
}

// RestoreOrder reconstructs an Order aggregate from persistent storage,
// preserving its operational state at the time of persistence. The restored
// order behaves identically to one mutated through normal domain operations.
func RestoreOrder(p RestoreOrderParams) (*Order, error) {
	if err := errors.Join(
		p.ID.Validate(),
		p.SellerID.Validate(),
		p.Status.Validate(),
		p.AgentResponse.Validate(),
	); err != nil {
		return nil, err
	}
	if err := p.Status.ValidateCanHaveAgent(p.AgentID != nil); err != nil {
		return nil, err
	}

	pending := 0
	for _, a := range p.Assignments {
		if a.IsPending() {
			pending++
		}
	}
	if pending > 1 {
		return nil, errs.NewValueIsInvalidErrorWithCause("assignments",
			fmt.Errorf("%d simultaneous pending offers", pending))
	}

	return &Order{
		id:               p.ID,
		version:          p.Version,
		sellerID:         p.SellerID,
		payment:          p.Payment,
		deliveryCharge:   p.DeliveryCharge,
		storeLocation:    p.StoreLocation,
		pickupAddress:    p.PickupAddress,
		deliveryAddress:  p.DeliveryAddress,
		status:           p.Status,
		agentID:          p.AgentID,
		agentResponse:    p.AgentResponse,
		assignments:      p.Assignments,
		otpCode:          p.OtpCode,
		otpVerified:      p.OtpVerified,
		otpVerifiedAt:    p.OtpVerifiedAt,
		requiresOtp:      p.RequiresOtp,
		escalationReason: p.EscalationReason,
		escalatedAt:      p.EscalatedAt,
		createdAt:        p.CreatedAt,
		pickedUpAt:       p.PickedUpAt,
		deliveredAt:      p.DeliveredAt,
		isConstructed:    true,
	}, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Version returns the optimistic-concurrency version loaded from storage.
func (o *Order) Version() int64 {
	return o.version
}

// SellerID returns the seller whose store fulfils the order.
func (o *Order) SellerID() kernel.UUID {
	return o.sellerID
}

// Payment returns the payment record.
func (o *Order) Payment() Payment {
	return o.payment
}

// DeliveryCharge returns the delivery fee carried by the order.
func (o *Order) DeliveryCharge() float64 {
	return o.deliveryCharge
}

// StoreLocation returns the seller/store coordinates if known.
func (o *Order) StoreLocation() *kernel.GeoPoint {
	return o.storeLocation
}

// PickupAddress returns the pickup address, possibly unset.
func (o *Order) PickupAddress() Address {
	return o.pickupAddress
}

// DeliveryAddress returns the customer's delivery address.
func (o *Order) DeliveryAddress() Address {
	return o.deliveryAddress
}

// Status returns the current delivery status.
func (o *Order) Status() Status {
	return o.status
}

// AgentID returns the currently attached agent, nil when unassigned.
func (o *Order) AgentID() *kernel.UUID {
	return o.agentID
}

// AgentResponse returns the response state of the current or last offer round.
func (o *Order) AgentResponse() Response {
	return o.agentResponse
}

// Assignments returns the append-only offer ledger, oldest first.
func (o *Order) Assignments() []*Assignment {
	return o.assignments
}

// Attempts returns the number of offers ever made for this order.
// It bounds the retry count: escalation triggers once Attempts reaches
// the configured maximum.
func (o *Order) Attempts() int {
	return len(o.assignments)
}

// LatestAssignment returns the newest ledger entry, or nil when no offer was
// ever made.
func (o *Order) LatestAssignment() *Assignment {
	if len(o.assignments) == 0 {
		return nil
	}
	return o.assignments[len(o.assignments)-1]
}

// PendingAssignment returns the unanswered ledger entry, or nil when every
// offer is resolved.
func (o *Order) PendingAssignment() *Assignment {
	for _, a := range o.assignments {
		if a.IsPending() {
			return a
		}
	}
	return nil
}

// OtpCode returns the current delivery-completion code, empty if none.
func (o *Order) OtpCode() string {
	return o.otpCode
}

// OtpVerified reports whether the completion code has been confirmed.
func (o *Order) OtpVerified() bool {
	return o.otpVerified
}

// OtpVerifiedAt returns when the code was confirmed, nil if never.
func (o *Order) OtpVerifiedAt() *time.Time {
	return o.otpVerifiedAt
}

// RequiresOtp reports whether the delivered transition is gated on OTP
// verification for this order.
func (o *Order) RequiresOtp() bool {
	return o.requiresOtp
}

// EscalationReason returns why the order was escalated, empty otherwise.
func (o *Order) EscalationReason() string {
	return o.escalationReason
}

// EscalatedAt returns when the order was escalated, nil otherwise.
func (o *Order) EscalatedAt() *time.Time {
	return o.escalatedAt
}

// CreatedAt returns when the order entered the dispatch core.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// PickedUpAt returns when the agent collected the order, nil before pickup.
func (o *Order) PickedUpAt() *time.Time {
	return o.pickedUpAt
}

// DeliveredAt returns when the order was delivered, nil before completion.
func (o *Order) DeliveredAt() *time.Time {
	return o.deliveredAt
}

// PickupPoint resolves the coordinates dispatch ranks agents against, in
// priority order: store/seller location, stored pickup address, delivery
// address. The second return value is false when no coordinates are known.
func (o *Order) PickupPoint() (kernel.GeoPoint, bool) {
	if o.storeLocation != nil {
		return *o.storeLocation, true
	}
	if loc := o.pickupAddress.Location(); loc != nil {
		return *loc, true
	}
	if loc := o.deliveryAddress.Location(); loc != nil {
		return *loc, true
	}
	return kernel.GeoPoint{}, false
}

// IsCooledDown reports whether the order's most recent offer - to any agent -
// is younger than the given window. Cooled-down orders are skipped entirely
// by the retry pass.
func (o *Order) IsCooledDown(window time.Duration, now time.Time) bool {
	latest := o.LatestAssignment()
	if latest == nil {
		return false
	}
	return now.Sub(latest.AssignedAt()) < window
}

// WasOfferedWithin reports whether the given agent appears in the ledger with
// an offer younger than the window. Such agents are excluded from new offers
// for this order until their cooldown expires.
func (o *Order) WasOfferedWithin(agentID kernel.UUID, window time.Duration, now time.Time) bool {
	for _, a := range o.assignments {
		if a.AgentID().IsEqual(agentID) && now.Sub(a.AssignedAt()) < window {
			return true
		}
	}
	return false
}

// IsDispatchable reports whether the retry pass should consider this order:
// pending, unassigned, and paid.
func (o *Order) IsDispatchable() bool {
	return o.status == Pending && o.agentID == nil && o.payment.IsPaid()
}

// IsAcceptedBy reports whether the given agent already accepted this order.
// Used for idempotent accept calls.
func (o *Order) IsAcceptedBy(agentID kernel.UUID) bool {
	return o.agentID != nil &&
		o.agentID.IsEqual(agentID) &&
		o.agentResponse == ResponseAccepted &&
		o.status.IsActiveDelivery()
}

// Assign offers the order to an agent: appends a pending ledger entry,
// attaches the agent, and moves the status to assigned.
//
// Business rules:
//   - The agent ID must be valid.
//   - The order must be pending or assigned (reassignment after a resolved
//     offer is allowed).
//   - No other offer may still be pending.
func (o *Order) Assign(agentID kernel.UUID, now time.Time) error {
	if err := agentID.Validate(); err != nil {
		return err
	}
	if o.PendingAssignment() != nil {
		return ErrPendingOfferExists
	}

	newStatus, err := o.status.Assign()
	if err != nil {
		return err
	}

	entry, err := NewAssignment(agentID, now)
	if err != nil {
		return err
	}

	o.assignments = append(o.assignments, entry)
	o.status = newStatus
	o.agentID = &agentID
	o.agentResponse = ResponsePending
	return nil
}

// Accept records the attached agent taking the offer. The order must be
// assigned to this agent with the offer still pending.
func (o *Order) Accept(agentID kernel.UUID, now time.Time) error {
	if err := o.requireAgent(agentID); err != nil {
		return err
	}

	newStatus, err := o.status.Accept()
	if err != nil {
		return err
	}

	pending := o.PendingAssignment()
	if pending == nil {
		return ErrNoPendingOffer
	}
	if err = pending.resolve(ResponseAccepted, now); err != nil {
		return err
	}

	o.status = newStatus
	o.agentResponse = ResponseAccepted
	return nil
}

// RejectOffer records the attached agent declining the offer and detaches
// nothing yet: the caller either reassigns immediately or releases the order
// back to pending.
func (o *Order) RejectOffer(agentID kernel.UUID, now time.Time) error {
	if err := o.requireAgent(agentID); err != nil {
		return err
	}

	pending := o.PendingAssignment()
	if pending == nil {
		return ErrNoPendingOffer
	}
	if err := pending.resolve(ResponseRejected, now); err != nil {
		return err
	}

	o.agentResponse = ResponseRejected
	return nil
}

// MarkOfferTimedOut resolves the unanswered offer as timed out and returns
// the stale agent so the caller can release that agent's capacity. The order
// stays assigned until the caller reassigns or releases it.
func (o *Order) MarkOfferTimedOut(now time.Time) (kernel.UUID, error) {
	if o.status != Assigned || o.agentResponse != ResponsePending {
		return kernel.UUID{}, ErrNoPendingOffer
	}

	pending := o.PendingAssignment()
	if pending == nil {
		return kernel.UUID{}, ErrNoPendingOffer
	}
	if err := pending.resolve(ResponseTimeout, now); err != nil {
		return kernel.UUID{}, err
	}

	o.agentResponse = ResponseTimeout
	return pending.AgentID(), nil
}

// ReleaseAgent detaches the agent from an assigned order and moves it back to
// pending, so the next retry pass picks it up. The last offer must already be
// resolved.
func (o *Order) ReleaseAgent() error {
	if o.PendingAssignment() != nil {
		return ErrPendingOfferExists
	}

	newStatus, err := o.status.Release()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.agentID = nil
	return nil
}

// PickUp records the agent collecting the order from the store.
func (o *Order) PickUp(agentID kernel.UUID, now time.Time) error {
	if err := o.requireAgent(agentID); err != nil {
		return err
	}

	newStatus, err := o.status.PickUp()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.pickedUpAt = &now
	return nil
}

// StartTransit records the agent heading to the customer.
func (o *Order) StartTransit(agentID kernel.UUID) error {
	if err := o.requireAgent(agentID); err != nil {
		return err
	}

	newStatus, err := o.status.Transit()
	if err != nil {
		return err
	}

	o.status = newStatus
	return nil
}

// Deliver completes the delivery. When the order requires OTP the completion
// code must have been verified first; that failure is ErrOtpNotVerified,
// distinct from a transition error. COD payments settle on delivery.
func (o *Order) Deliver(agentID kernel.UUID, now time.Time) error {
	if err := o.requireAgent(agentID); err != nil {
		return err
	}
	if o.requiresOtp && !o.otpVerified {
		return ErrOtpNotVerified
	}

	newStatus, err := o.status.Deliver()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.deliveredAt = &now
	if o.payment.Method() == PaymentCOD {
		o.payment = o.payment.markPaid()
	}
	return nil
}

// Cancel terminates the order before delivery. Any live pending offer is
// resolved as rejected so no dangling pending ledger entry survives. Returns
// the agent whose capacity the caller must release, nil if none was attached.
func (o *Order) Cancel(now time.Time) (*kernel.UUID, error) {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return nil, err
	}

	if pending := o.PendingAssignment(); pending != nil {
		if resolveErr := pending.resolve(ResponseRejected, now); resolveErr != nil {
			return nil, resolveErr
		}
	}

	released := o.agentID
	o.status = newStatus
	o.agentID = nil
	return released, nil
}

// Escalate marks the order as requiring manual intervention after automatic
// dispatch exhausted its retries.
func (o *Order) Escalate(reason string, now time.Time) error {
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}

	newStatus, err := o.status.Escalate()
	if err != nil {
		return err
	}

	o.status = newStatus
	o.escalationReason = reason
	o.escalatedAt = &now
	return nil
}

// SetPickupAddress stores the resolved pickup address. Once set it is never
// overwritten.
func (o *Order) SetPickupAddress(addr Address) {
	if o.pickupAddress.IsSet() {
		return
	}
	o.pickupAddress = addr
}

// GenerateOtp returns the delivery-completion code, creating a fresh 4-digit
// code when none exists or the previous one was already consumed. Idempotent:
// an existing unverified code is returned unchanged. Only allowed while the
// delivery is active.
func (o *Order) GenerateOtp(now time.Time) (string, error) {
	if o.status != Assigned && !o.status.IsActiveDelivery() {
		return "", ErrOtpNotActive
	}

	if o.otpCode != "" && !o.otpVerified {
		return o.otpCode, nil
	}

	o.otpCode = fmt.Sprintf("%04d", 1000+rand.IntN(9000)) //nolint:gosec // courtesy check, not a credential
	o.otpVerified = false
	o.otpVerifiedAt = nil
	return o.otpCode, nil
}

// VerifyOtp confirms the completion code supplied by the customer.
// An exact match sets otpVerified; repeating the call with the same code
// succeeds without further mutation.
func (o *Order) VerifyOtp(code string, now time.Time) error {
	if code == "" {
		return errs.NewValueIsRequiredError("otp")
	}
	if o.otpCode == "" {
		return ErrOtpNotGenerated
	}
	if o.otpCode != code {
		return ErrInvalidOtp
	}
	if o.otpVerified {
		return nil
	}

	o.otpVerified = true
	o.otpVerifiedAt = &now
	return nil
}

func (o *Order) requireAgent(agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}
	if o.agentID == nil || !o.agentID.IsEqual(agentID) {
		return ErrAgentMismatch
	}
	return nil
}
