package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// OrderEvent is the payload published to interested parties when dispatch
// changes an order. Fields mirror what the mobile and seller apps render.
type OrderEvent struct {
	OrderID       kernel.UUID `json:"orderId"`
	Status        string      `json:"status"`
	AgentID       *string     `json:"agentId,omitempty"`
	AgentResponse string      `json:"agentResponse,omitempty"`
	Reason        string      `json:"reason,omitempty"`
}

// NotificationPublisher pushes order lifecycle events to the parties
// following an order. Publishing is best effort: dispatch state never
// depends on a notification having been delivered.
type NotificationPublisher interface {
	// PublishOrderEvent notifies the agent-facing channel about an order change.
	PublishOrderEvent(ctx context.Context, agentID kernel.UUID, event OrderEvent) error

	// PublishSellerEvent notifies the seller whose store fulfils the order.
	PublishSellerEvent(ctx context.Context, sellerID kernel.UUID, event OrderEvent) error

	// PublishAdminEvent notifies the operations channel, used for escalations.
	PublishAdminEvent(ctx context.Context, event OrderEvent) error
}

// Geocoder resolves human-readable addresses for coordinates. Used to fill
// the pickup address when an agent accepts an order whose store has no
// stored address text.
type Geocoder interface {
	// ReverseGeocode returns the formatted address for a point.
	ReverseGeocode(ctx context.Context, point kernel.GeoPoint) (string, error)

	// PlaceDetails returns the formatted address and coordinates of a
	// provider place ID.
	PlaceDetails(ctx context.Context, placeID string) (string, kernel.GeoPoint, error)
}

// CommissionRecorder books the agent's delivery earning when an order
// completes. Failures are logged and swallowed: the marketplace reconciles
// earnings out of band, and a delivered order is never rolled back over a
// ledger write.
type CommissionRecorder interface {
	RecordDeliveryEarning(ctx context.Context, agentID kernel.UUID, orderID kernel.UUID, amount float64) error
}
