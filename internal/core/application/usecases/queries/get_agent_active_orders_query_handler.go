package queries

import (
	"context"
	"database/sql"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAgentActiveOrdersQueryHandler reads an agent's active workload, oldest
// order first.
type GetAgentActiveOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetAgentActiveOrdersQueryHandler creates a handler for agent workload queries.
func NewGetAgentActiveOrdersQueryHandler(db *gorm.DB) GetAgentActiveOrdersQueryHandler {
	return GetAgentActiveOrdersQueryHandler{db: db}
}

// Handle executes the query.
func (h GetAgentActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetAgentActiveOrdersQuery,
) ([]GetAgentActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetAgentActiveOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			status,
			delivery_charge,
			COALESCE(pickup_address->>'fullAddress', ''),
			COALESCE(delivery_address->>'fullAddress', ''),
			otp_verified
		FROM orders
		WHERE agent_id = ? AND status IN (?, ?, ?)
		ORDER BY created_at
	`,
		query.AgentID().Bytes(),
		order.Accepted.String(), order.PickedUp.String(), order.InTransit.String(),
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetAgentActiveOrdersQueryResponse
		var id uuid.UUID
		var pickup, delivery sql.NullString

		err = rows.Scan(&id, &resp.Status, &resp.DeliveryCharge, &pickup, &delivery, &resp.OtpVerified)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}

		resp.ID = orderID
		resp.PickupAddress = pickup.String
		resp.DeliveryAddress = delivery.String
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
