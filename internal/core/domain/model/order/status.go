package order

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the delivery-lifecycle state of an order.
// It implements a state machine with defined transitions so orders can only
// move along the allowed workflow.
//
// State transitions:
//
//	Pending ──> Assigned ──> Accepted ──> PickedUp ──> InTransit ──> Delivered
//	   │  ▲         │
//	   │  └─────────┘ (offer released: timeout / rejection with no successor)
//	   └──> Escalated
//
//	any pre-delivered state ──> Cancelled
//
// Delivered, Cancelled, and Escalated are terminal. Status is a value object
// that validates transitions and provides string representations for
// persistence and display.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status: the order is paid and waiting for an
	// agent to be offered the delivery.
	Pending

	// Assigned indicates an offer is out to an agent who has not responded yet.
	Assigned

	// Accepted indicates the offered agent accepted and the delivery is active.
	Accepted

	// PickedUp indicates the agent collected the order from the store.
	PickedUp

	// InTransit indicates the order is on its way to the customer.
	InTransit

	// Delivered indicates the order reached the customer. Terminal.
	Delivered

	// Cancelled indicates the order was cancelled before delivery. Terminal.
	Cancelled

	// Escalated indicates automatic dispatch gave up after exhausting
	// retries and the order needs manual intervention. Terminal.
	Escalated
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Pending:   "pending",
		Assigned:  "assigned",
		Accepted:  "accepted",
		PickedUp:  "picked_up",
		InTransit: "in_transit",
		Delivered: "delivered",
		Cancelled: "cancelled",
		Escalated: "escalated",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:   "pending",
		Assigned:  "assigned",
		Accepted:  "accepted",
		PickedUp:  "picked_up",
		InTransit: "in_transit",
		Delivered: "delivered",
		Cancelled: "cancelled",
		Escalated: "escalated",
	}
}

// StatusFromString parses the persisted string representation of a status.
// Returns a validation error for anything outside the closed enumeration.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status",
		fmt.Errorf("%q is not a valid delivery status", s),
	)
}

// Validate checks if the Status value is part of the closed enumeration.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted name of the status.
// This method implements the fmt.Stringer interface and is safe to call on
// any Status value, including invalid ones.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status admits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled || s == Escalated
}

// IsActiveDelivery reports whether an agent is actively working the order.
// Assigned is excluded: an unanswered offer is not active work.
func (s Status) IsActiveDelivery() bool {
	return s == Accepted || s == PickedUp || s == InTransit
}

// Assign transitions the status to Assigned.
//
// Valid transitions:
//   - Pending -> Assigned (new offer)
//   - Assigned -> Assigned (reassignment after timeout or rejection)
func (s Status) Assign() (Status, error) {
	if s != Pending && s != Assigned {
		return 0, transitionError(s, Assigned)
	}
	return Assigned, nil
}

// Accept transitions the status to Accepted. Only an outstanding offer
// (Assigned) can be accepted.
func (s Status) Accept() (Status, error) {
	if s != Assigned {
		return 0, transitionError(s, Accepted)
	}
	return Accepted, nil
}

// PickUp transitions the status to PickedUp. The delivery must have been
// accepted first.
func (s Status) PickUp() (Status, error) {
	if s != Accepted {
		return 0, transitionError(s, PickedUp)
	}
	return PickedUp, nil
}

// Transit transitions the status to InTransit after pickup.
func (s Status) Transit() (Status, error) {
	if s != PickedUp {
		return 0, transitionError(s, InTransit)
	}
	return InTransit, nil
}

// Deliver transitions the status to Delivered. Terminal.
func (s Status) Deliver() (Status, error) {
	if s != InTransit {
		return 0, transitionError(s, Delivered)
	}
	return Delivered, nil
}

// Release moves an unanswered offer back to Pending so the order falls into
// the next retry pass.
func (s Status) Release() (Status, error) {
	if s != Assigned {
		return 0, transitionError(s, Pending)
	}
	return Pending, nil
}

// Cancel transitions the status to Cancelled. Any pre-delivered state may be
// cancelled; terminal states may not.
func (s Status) Cancel() (Status, error) {
	if s.IsTerminal() || s == Unknown {
		return 0, transitionError(s, Cancelled)
	}
	return Cancelled, nil
}

// Escalate transitions the status to Escalated. Only unassigned pending
// orders escalate; an order with a live offer is never abandoned directly.
func (s Status) Escalate() (Status, error) {
	if s != Pending {
		return 0, transitionError(s, Escalated)
	}
	return Escalated, nil
}

// ValidateCanHaveAgent validates the consistency between order status and
// agent assignment: an agent is attached iff the order is assigned or in an
// active-delivery state. Delivered orders keep the delivering agent for the
// record.
func (s Status) ValidateCanHaveAgent(hasAgent bool) error {
	requiresAgent := s == Assigned || s.IsActiveDelivery()
	allowsAgent := requiresAgent || s == Delivered

	if hasAgent && !allowsAgent {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to have an agent", s.String()),
		)
	}
	if !hasAgent && requiresAgent {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to have no agent", s.String()),
		)
	}
	return nil
}

func transitionError(from Status, to Status) error {
	return errs.NewValueIsInvalidErrorWithCause(
		"status transition",
		fmt.Errorf("cannot transition from %s to %s", from.String(), to.String()),
	)
}
