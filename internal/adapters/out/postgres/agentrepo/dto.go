// Package agentrepo provides data transfer objects and mapping functions for
// delivery agent persistence. This package implements the repository pattern
// for the agent aggregate, handling the conversion between domain entities
// and database representations.
package agentrepo

import (
	"time"

	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AgentDTO represents the database structure for persisting delivery agent
// aggregates. The workload counters are mutated with atomic column updates,
// never through full-row writes from concurrent dispatch passes.
type AgentDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name              string    `gorm:"type:varchar(255);not null"`
	Approved          bool      `gorm:"not null"`
	Active            bool      `gorm:"not null"`
	Available         bool      `gorm:"not null;index"`
	Lat               *float64  `gorm:"type:double precision"`
	Lng               *float64  `gorm:"type:double precision"`
	LocationUpdatedAt *time.Time
	AssignedOrders    int `gorm:"not null;default:0"`
	CompletedOrders   int `gorm:"not null;default:0"`
}

// TableName specifies the database table name for agent entities.
// Overrides GORM's default naming convention to use "agents".
func (AgentDTO) TableName() string {
	return "agents"
}

// fromDomain converts an agent domain aggregate to its database representation.
func fromDomain(aggregate *agent.DeliveryAgent) AgentDTO {
	var lat, lng *float64
	if loc := aggregate.Location(); loc != nil {
		la, ln := loc.Lat(), loc.Lng()
		lat, lng = &la, &ln
	}

	return AgentDTO{
		ID:                aggregate.ID().Bytes(),
		Name:              aggregate.Name(),
		Approved:          aggregate.IsApproved(),
		Active:            aggregate.IsActive(),
		Available:         aggregate.IsAvailable(),
		Lat:               lat,
		Lng:               lng,
		LocationUpdatedAt: aggregate.LocationUpdatedAt(),
		AssignedOrders:    aggregate.AssignedOrders(),
		CompletedOrders:   aggregate.CompletedOrders(),
	}
}

// toDomain converts a database DTO to an agent domain aggregate using
// RestoreDeliveryAgent.
func toDomain(dto AgentDTO) (*agent.DeliveryAgent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoPoint
	if dto.Lat != nil && dto.Lng != nil {
		loc, locErr := kernel.NewGeoPoint(*dto.Lat, *dto.Lng)
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	return agent.RestoreDeliveryAgent(agent.RestoreDeliveryAgentParams{
		ID:                id,
		Name:              dto.Name,
		Approved:          dto.Approved,
		Active:            dto.Active,
		Available:         dto.Available,
		Location:          location,
		LocationUpdatedAt: dto.LocationUpdatedAt,
		AssignedOrders:    dto.AssignedOrders,
		CompletedOrders:   dto.CompletedOrders,
	})
}
