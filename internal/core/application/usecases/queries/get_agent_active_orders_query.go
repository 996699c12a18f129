package queries

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetAgentActiveOrdersQueryIsNotConstructed = errors.New(
	"GetAgentActiveOrdersQuery must be created via NewGetAgentActiveOrdersQuery constructor",
)

// GetAgentActiveOrdersQuery retrieves the orders an agent is currently
// working: accepted, picked up, or in transit.
type GetAgentActiveOrdersQuery struct { //nolint:recvcheck //using for validation
	agentID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetAgentActiveOrdersQuery creates a query for an agent's active orders.
func NewGetAgentActiveOrdersQuery(agentID kernel.UUID) (GetAgentActiveOrdersQuery, error) {
	if err := agentID.Validate(); err != nil {
		return GetAgentActiveOrdersQuery{}, err
	}
	return GetAgentActiveOrdersQuery{
		agentID: agentID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetAgentActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetAgentActiveOrdersQueryIsNotConstructed)
}

// AgentID returns the agent whose workload is being read.
func (q GetAgentActiveOrdersQuery) AgentID() kernel.UUID {
	return q.agentID
}

// GetAgentActiveOrdersQueryResponse represents one order in an agent's
// active workload.
type GetAgentActiveOrdersQueryResponse struct {
	ID              kernel.UUID
	Status          string
	DeliveryCharge  float64
	PickupAddress   string
	DeliveryAddress string
	OtpVerified     bool
}
