package ports

import (
	"context"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
)

// AgentRepository defines the persistence contract for delivery agent
// aggregates.
//
// The counter operations are atomic at the storage level so concurrent
// dispatch passes never lose an increment or drive the count negative.
type AgentRepository interface {
	// Add persists a new agent aggregate to storage.
	Add(ctx context.Context, aggregate *agent.DeliveryAgent) error

	// Update persists changes to an existing agent aggregate.
	Update(ctx context.Context, aggregate *agent.DeliveryAgent) error

	// Get retrieves an agent aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*agent.DeliveryAgent, error)

	// GetAllAvailable retrieves every agent eligible for dispatch right
	// now: approved, active, and on duty.
	GetAllAvailable(ctx context.Context) ([]*agent.DeliveryAgent, error)

	// IncrementAssignedOrders atomically counts one more concurrent order
	// against the agent, guarded by the capacity limit. Reports false when
	// the agent was already at capacity and nothing changed.
	IncrementAssignedOrders(ctx context.Context, agentID kernel.UUID, maxConcurrent int) (bool, error)

	// DecrementAssignedOrders atomically returns one unit of capacity.
	// The stored counter never goes below zero.
	DecrementAssignedOrders(ctx context.Context, agentID kernel.UUID) error

	// MarkDelivered atomically converts one assigned order into a
	// completed one.
	MarkDelivered(ctx context.Context, agentID kernel.UUID) error
}
