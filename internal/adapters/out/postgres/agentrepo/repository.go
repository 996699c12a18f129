package agentrepo

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormAgentRepository implements AgentRepository using GORM.
type GormAgentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormAgentRepository creates a new GORM agent repository.
func NewGormAgentRepository(db *gorm.DB, tracker aggregateTracker) *GormAgentRepository {
	return &GormAgentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new agent to the database.
func (r *GormAgentRepository) Add(ctx context.Context, aggregate *agent.DeliveryAgent) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing agent to the database.
//
// The workload counters are intentionally omitted: they only move through
// the atomic counter operations, and a full-row write from a stale aggregate
// must not clobber them.
func (r *GormAgentRepository) Update(ctx context.Context, aggregate *agent.DeliveryAgent) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&AgentDTO{}).
		Where("id = ?", dto.ID).
		Select("*").Omit("id", "assigned_orders", "completed_orders").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("agent", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an agent by ID.
func (r *GormAgentRepository) Get(ctx context.Context, id kernel.UUID) (*agent.DeliveryAgent, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto AgentDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("agent", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllAvailable retrieves every agent eligible for dispatch right now:
// approved, active, and on duty.
func (r *GormAgentRepository) GetAllAvailable(ctx context.Context) ([]*agent.DeliveryAgent, error) {
	var dtos []AgentDTO
	if err := r.db.WithContext(ctx).
		Where("approved AND active AND available").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	agents := make([]*agent.DeliveryAgent, 0, len(dtos))
	for _, dto := range dtos {
		a, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}

	return agents, nil
}

// IncrementAssignedOrders atomically counts one more concurrent order against
// the agent, guarded by the capacity limit. The guard lives in the WHERE
// clause so two dispatch passes racing for the last slot cannot both win.
func (r *GormAgentRepository) IncrementAssignedOrders(
	ctx context.Context, agentID kernel.UUID, maxConcurrent int,
) (bool, error) {
	if err := agentID.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).Model(&AgentDTO{}).
		Where("id = ? AND assigned_orders < ?", agentID.Bytes(), maxConcurrent).
		UpdateColumn("assigned_orders", gorm.Expr("assigned_orders + 1"))
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// DecrementAssignedOrders atomically returns one unit of capacity. The
// stored counter never goes below zero.
func (r *GormAgentRepository) DecrementAssignedOrders(ctx context.Context, agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&AgentDTO{}).
		Where("id = ?", agentID.Bytes()).
		UpdateColumn("assigned_orders", gorm.Expr("GREATEST(assigned_orders - 1, 0)")).
		Error
}

// MarkDelivered atomically converts one assigned order into a completed one.
func (r *GormAgentRepository) MarkDelivered(ctx context.Context, agentID kernel.UUID) error {
	if err := agentID.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&AgentDTO{}).
		Where("id = ?", agentID.Bytes()).
		UpdateColumns(map[string]any{
			"assigned_orders":  gorm.Expr("GREATEST(assigned_orders - 1, 0)"),
			"completed_orders": gorm.Expr("completed_orders + 1"),
		}).
		Error
}
