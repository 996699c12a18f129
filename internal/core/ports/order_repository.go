package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
//
// Update is conditional on the version the aggregate was loaded with: when
// the stored row moved underneath, implementations return an
// errs.ConcurrencyConflictError and the caller retries on fresh state.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate, bumping its
	// version. Fails with a concurrency conflict when the stored version
	// no longer matches the loaded one.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetPendingUnassigned retrieves up to limit paid orders waiting for an
	// agent, oldest first. The retry pass works through this batch.
	GetPendingUnassigned(ctx context.Context, limit int) ([]*order.Order, error)

	// GetAwaitingResponse retrieves up to limit orders whose offer is still
	// unanswered, oldest offer first. The timeout pass works through this
	// batch.
	GetAwaitingResponse(ctx context.Context, limit int) ([]*order.Order, error)

	// GetActiveByAgent retrieves the orders an agent is actively delivering.
	GetActiveByAgent(ctx context.Context, agentID kernel.UUID) ([]*order.Order, error)

	// CountActiveDeliveries counts the orders an agent currently has in an
	// active-delivery status. The accept flow enforces the single active
	// delivery rule against this count.
	CountActiveDeliveries(ctx context.Context, agentID kernel.UUID) (int, error)
}
