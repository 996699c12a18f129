package order

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

// Assignment is one entry in the order's append-only offer ledger: a single
// agent/order pairing with its response lifecycle. Entries are never removed;
// a pending entry is resolved in place to accepted, rejected, or timeout.
type Assignment struct {
	agentID     kernel.UUID
	assignedAt  time.Time
	response    Response
	respondedAt *time.Time
}

// NewAssignment creates a pending ledger entry for an offer made to agentID
// at the given time.
func NewAssignment(agentID kernel.UUID, assignedAt time.Time) (*Assignment, error) {
	if err := agentID.Validate(); err != nil {
		return nil, err
	}
	if assignedAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("assignedAt")
	}

	return &Assignment{
		agentID:    agentID,
		assignedAt: assignedAt,
		response:   ResponsePending,
	}, nil
}

// RestoreAssignment reconstructs a ledger entry from persistence.
func RestoreAssignment(
	agentID kernel.UUID,
	assignedAt time.Time,
	response Response,
	respondedAt *time.Time,
) (*Assignment, error) {
	if err := agentID.Validate(); err != nil {
		return nil, err
	}
	if err := response.Validate(); err != nil {
		return nil, err
	}

	return &Assignment{
		agentID:     agentID,
		assignedAt:  assignedAt,
		response:    response,
		respondedAt: respondedAt,
	}, nil
}

// AgentID returns the agent the offer was made to.
func (a *Assignment) AgentID() kernel.UUID {
	return a.agentID
}

// AssignedAt returns when the offer was made.
func (a *Assignment) AssignedAt() time.Time {
	return a.assignedAt
}

// Response returns the current response state of the offer.
func (a *Assignment) Response() Response {
	return a.response
}

// RespondedAt returns when the offer was resolved, nil while pending.
func (a *Assignment) RespondedAt() *time.Time {
	return a.respondedAt
}

// IsPending reports whether the offer still awaits an answer.
func (a *Assignment) IsPending() bool {
	return a.response == ResponsePending
}

// resolve finalizes a pending entry with the given response.
func (a *Assignment) resolve(response Response, at time.Time) error {
	if !a.IsPending() {
		return errs.NewPreconditionFailedError("assignment",
			"offer is already resolved as "+a.response.String())
	}
	if !response.IsResolved() {
		return errs.NewValueIsInvalidError("response")
	}

	a.response = response
	a.respondedAt = &at
	return nil
}
