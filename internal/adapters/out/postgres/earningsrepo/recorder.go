// Package earningsrepo books delivery earnings for agents. It implements the
// CommissionRecorder port with an append-only ledger table; the marketplace
// reconciles payouts from it out of band.
package earningsrepo

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EarningDTO is one booked delivery earning.
type EarningDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	AgentID   uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Amount    float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName specifies the database table name for earning entries.
func (EarningDTO) TableName() string {
	return "agent_earnings"
}

// GormEarningsRecorder implements CommissionRecorder using GORM.
type GormEarningsRecorder struct {
	db *gorm.DB
}

// NewGormEarningsRecorder creates a new GORM earnings recorder.
func NewGormEarningsRecorder(db *gorm.DB) *GormEarningsRecorder {
	return &GormEarningsRecorder{db: db}
}

// RecordDeliveryEarning appends one earning row for a delivered order.
// The unique index on order_id makes a replayed delivery a no-op.
func (r *GormEarningsRecorder) RecordDeliveryEarning(
	ctx context.Context, agentID kernel.UUID, orderID kernel.UUID, amount float64,
) error {
	if err := agentID.Validate(); err != nil {
		return err
	}
	if err := orderID.Validate(); err != nil {
		return err
	}

	dto := EarningDTO{
		ID:        kernel.NewUUID().Bytes(),
		AgentID:   agentID.Bytes(),
		OrderID:   orderID.Bytes(),
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(&dto).Error
}
