// Package queries contains read-only operations against the dispatch store.
// Query handlers bypass the aggregates and read straight into flat response
// models, following the read side of the CQRS split.
package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetEscalatedOrdersQueryIsNotConstructed = errors.New(
	"GetEscalatedOrdersQuery must be created via NewGetEscalatedOrdersQuery constructor",
)

// GetEscalatedOrdersQuery retrieves the orders automatic dispatch gave up on,
// for the operations view.
type GetEscalatedOrdersQuery struct {
	guard guard.ConstructorGuard
}

// NewGetEscalatedOrdersQuery creates a query for escalated orders.
func NewGetEscalatedOrdersQuery() GetEscalatedOrdersQuery {
	return GetEscalatedOrdersQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetEscalatedOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetEscalatedOrdersQueryIsNotConstructed)
}

// GetEscalatedOrdersQueryResponse represents one escalated order.
type GetEscalatedOrdersQueryResponse struct {
	ID          kernel.UUID
	SellerID    kernel.UUID
	Reason      string
	Attempts    int
	EscalatedAt time.Time
}
