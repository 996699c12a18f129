package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetEscalatedOrdersQueryHandler reads escalated orders for the operations
// view, newest escalation first.
type GetEscalatedOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetEscalatedOrdersQueryHandler creates a handler for escalated order queries.
func NewGetEscalatedOrdersQueryHandler(db *gorm.DB) GetEscalatedOrdersQueryHandler {
	return GetEscalatedOrdersQueryHandler{db: db}
}

// Handle executes the query.
func (h GetEscalatedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetEscalatedOrdersQuery,
) ([]GetEscalatedOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetEscalatedOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			seller_id,
			escalation_reason,
			jsonb_array_length(assignments),
			escalated_at
		FROM orders
		WHERE status = ?
		ORDER BY escalated_at DESC
	`, order.Escalated.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetEscalatedOrdersQueryResponse
		var id, sellerID uuid.UUID
		var escalatedAt time.Time

		err = rows.Scan(&id, &sellerID, &resp.Reason, &resp.Attempts, &escalatedAt)
		if err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		seller, idErr := kernel.UUIDFromBytes(sellerID[:])
		if idErr != nil {
			return nil, idErr
		}

		resp.ID = orderID
		resp.SellerID = seller
		resp.EscalatedAt = escalatedAt
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
