package agent

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Domain errors for delivery agent operations.
var (
	// ErrNameIsRequired is returned when attempting to create an agent without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrAgentIsNotConstructed is returned when using an improperly initialized DeliveryAgent.
	ErrAgentIsNotConstructed = errors.New("DeliveryAgent must be created via NewDeliveryAgent constructor")
	// ErrNoAssignedOrders is returned when completing a delivery for an agent
	// whose assignment counter is already zero.
	ErrNoAssignedOrders = errs.NewPreconditionFailedError("agent", "agent has no assigned orders")
)

// DeliveryAgent represents a courier working the delivery marketplace.
// It is an aggregate root that manages the agent's eligibility for dispatch,
// last known position, and current workload.
//
// Key responsibilities:
//   - Managing agent identity and contact details
//   - Tracking the eligibility flags dispatch filters on (approved, active, available)
//   - Tracking the last reported location and when it was reported
//   - Counting concurrently assigned offers against the dispatch capacity
//   - Counting lifetime completed deliveries
//
// Business rules:
//   - Agent must have a valid UUID and a non-empty name
//   - An agent receives offers only while approved, active, and available
//   - The assigned-order count never goes negative
type DeliveryAgent struct {
	id   kernel.UUID
	name string

	approved  bool
	active    bool
	available bool

	location          *kernel.GeoPoint
	locationUpdatedAt *time.Time

	assignedOrders  int
	completedOrders int

	guard guard.ConstructorGuard
}

// NewDeliveryAgent creates a new DeliveryAgent with the specified identity.
// Fresh agents start unapproved and unavailable: they enter the dispatch pool
// only after an operator approves them and they report themselves available.
func NewDeliveryAgent(id kernel.UUID, name string) (*DeliveryAgent, error) {
	agent := &DeliveryAgent{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		agent.setID(id),
		agent.setName(name),
	); err != nil {
		return nil, err
	}

	return agent, nil
}

// RestoreDeliveryAgentParams carries the persisted state of an agent for
// reconstruction by repositories.
type RestoreDeliveryAgentParams struct {
	ID                kernel.UUID
	Name              string
	Approved          bool
	Active            bool
	Available         bool
	Location          *kernel.GeoPoint
	LocationUpdatedAt *time.Time
	AssignedOrders    int
	CompletedOrders   int
}

// RestoreDeliveryAgent reconstructs a DeliveryAgent aggregate from persistent
// storage, preserving its flags, position, and workload counters.
func RestoreDeliveryAgent(p RestoreDeliveryAgentParams) (*DeliveryAgent, error) {
	agent := &DeliveryAgent{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		agent.setID(p.ID),
		agent.setName(p.Name),
	); err != nil {
		return nil, err
	}
	if p.Location != nil {
		if err := p.Location.Validate(); err != nil {
			return nil, err
		}
	}
	if p.AssignedOrders < 0 {
		return nil, errs.NewValueIsOutOfRangeError("assignedOrders", p.AssignedOrders, 0, nil)
	}
	if p.CompletedOrders < 0 {
		return nil, errs.NewValueIsOutOfRangeError("completedOrders", p.CompletedOrders, 0, nil)
	}

	agent.approved = p.Approved
	agent.active = p.Active
	agent.available = p.Available
	agent.location = p.Location
	agent.locationUpdatedAt = p.LocationUpdatedAt
	agent.assignedOrders = p.AssignedOrders
	agent.completedOrders = p.CompletedOrders
	return agent, nil
}

// Validate checks if the DeliveryAgent was properly constructed.
// The zero value of DeliveryAgent is invalid and will fail this validation.
func (a *DeliveryAgent) Validate() error {
	if a == nil {
		return ErrAgentIsNotConstructed
	}
	return a.guard.Validate(ErrAgentIsNotConstructed)
}

// IsEqual compares two agents by their unique identifiers.
func (a *DeliveryAgent) IsEqual(other *DeliveryAgent) bool {
	if other == nil {
		return false
	}
	return a.id.IsEqual(other.id)
}

// ID returns the unique identifier of the agent.
func (a *DeliveryAgent) ID() kernel.UUID {
	return a.id
}

// Name returns the human-readable name of the agent.
func (a *DeliveryAgent) Name() string {
	return a.name
}

// IsApproved reports whether an operator approved the agent for deliveries.
func (a *DeliveryAgent) IsApproved() bool {
	return a.approved
}

// IsActive reports whether the agent's account is enabled.
func (a *DeliveryAgent) IsActive() bool {
	return a.active
}

// IsAvailable reports whether the agent reported themselves on duty.
func (a *DeliveryAgent) IsAvailable() bool {
	return a.available
}

// Location returns the agent's last reported position, nil when never reported.
func (a *DeliveryAgent) Location() *kernel.GeoPoint {
	return a.location
}

// LocationUpdatedAt returns when the position was last reported.
func (a *DeliveryAgent) LocationUpdatedAt() *time.Time {
	return a.locationUpdatedAt
}

// AssignedOrders returns the number of orders currently offered to or carried
// by the agent. Dispatch compares it against the concurrency capacity.
func (a *DeliveryAgent) AssignedOrders() int {
	return a.assignedOrders
}

// CompletedOrders returns the agent's lifetime completed delivery count.
func (a *DeliveryAgent) CompletedOrders() int {
	return a.completedOrders
}

// IsEligible reports whether dispatch may consider the agent at all:
// approved by an operator, account active, and currently on duty.
func (a *DeliveryAgent) IsEligible() bool {
	return a.approved && a.active && a.available
}

// CanAcceptOffer reports whether the agent has spare capacity for one more
// concurrent order under the given limit.
func (a *DeliveryAgent) CanAcceptOffer(maxConcurrent int) bool {
	return a.IsEligible() && a.assignedOrders < maxConcurrent
}

// Approve marks the agent as operator-approved for deliveries.
func (a *DeliveryAgent) Approve() {
	a.approved = true
}

// Activate enables or disables the agent's account.
func (a *DeliveryAgent) Activate(active bool) {
	a.active = active
}

// SetAvailable flips the agent's on-duty flag.
func (a *DeliveryAgent) SetAvailable(available bool) {
	a.available = available
}

// UpdateLocation records a new reported position.
func (a *DeliveryAgent) UpdateLocation(location kernel.GeoPoint, reportedAt time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}

	a.location = &location
	a.locationUpdatedAt = &reportedAt
	return nil
}

// TakeAssignment counts one more concurrent order against the agent.
func (a *DeliveryAgent) TakeAssignment() {
	a.assignedOrders++
}

// ReleaseAssignment returns one unit of capacity after a timeout, rejection,
// or cancellation. The counter never goes below zero.
func (a *DeliveryAgent) ReleaseAssignment() {
	if a.assignedOrders > 0 {
		a.assignedOrders--
	}
}

// CompleteDelivery converts one assigned order into a completed one.
func (a *DeliveryAgent) CompleteDelivery() error {
	if a.assignedOrders == 0 {
		return ErrNoAssignedOrders
	}

	a.assignedOrders--
	a.completedOrders++
	return nil
}

// setID sets the agent's unique identifier with validation.
func (a *DeliveryAgent) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

// setName sets the agent's name with validation.
func (a *DeliveryAgent) setName(name string) error {
	if name == "" {
		return ErrNameIsRequired
	}
	a.name = name
	return nil
}
