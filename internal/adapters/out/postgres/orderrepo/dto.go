// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Maps order domain entities to a relational table with indexes supporting
// the dispatch queries by status, agent, and escalation time. Addresses and
// the assignment ledger are stored as jsonb so read models can project into
// them without extra joins.
type OrderDTO struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Version          int64           `gorm:"not null"`
	SellerID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethod    string          `gorm:"type:varchar(32);not null"`
	PaymentAmount    float64         `gorm:"not null"`
	PaymentStatus    string          `gorm:"type:varchar(32);not null"`
	DeliveryCharge   float64         `gorm:"not null"`
	StoreLat         *float64        `gorm:"type:double precision"`
	StoreLng         *float64        `gorm:"type:double precision"`
	PickupAddress    AddressJSON     `gorm:"type:jsonb"`
	DeliveryAddress  AddressJSON     `gorm:"type:jsonb"`
	Status           string          `gorm:"type:varchar(32);not null;index"`
	AgentID          *uuid.UUID      `gorm:"type:uuid;index"`
	AgentResponse    string          `gorm:"type:varchar(16);not null"`
	Assignments      AssignmentsJSON `gorm:"type:jsonb;not null"`
	OtpCode          string          `gorm:"type:varchar(8)"`
	OtpVerified      bool            `gorm:"not null"`
	OtpVerifiedAt    *time.Time
	RequiresOtp      bool   `gorm:"not null"`
	EscalationReason string `gorm:"type:text"`
	EscalatedAt      *time.Time
	CreatedAt        time.Time `gorm:"not null;index"`
	PickedUpAt       *time.Time
	DeliveredAt      *time.Time
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// AddressJSON is the jsonb representation of a postal address with optional
// coordinates. The fullAddress key is what seller and agent read models
// project out of the column.
type AddressJSON struct {
	FullAddress string   `json:"fullAddress"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
}

// Value implements driver.Valuer for jsonb storage.
func (a AddressJSON) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for jsonb retrieval.
func (a *AddressJSON) Scan(value any) error {
	if value == nil {
		*a = AddressJSON{}
		return nil
	}

	raw, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported address column type %T", value)
	}

	return json.Unmarshal(raw, a)
}

// AssignmentJSON is one entry of the order's assignment ledger as stored
// in jsonb.
type AssignmentJSON struct {
	AgentID     uuid.UUID  `json:"agentId"`
	AssignedAt  time.Time  `json:"assignedAt"`
	Response    string     `json:"response"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

// AssignmentsJSON is the jsonb assignment ledger column. It always stores a
// json array so jsonb_array_length works on every row.
type AssignmentsJSON []AssignmentJSON

// Value implements driver.Valuer for jsonb storage.
func (a AssignmentsJSON) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal([]AssignmentJSON{})
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for jsonb retrieval.
func (a *AssignmentsJSON) Scan(value any) error {
	if value == nil {
		*a = AssignmentsJSON{}
		return nil
	}

	raw, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported assignments column type %T", value)
	}

	return json.Unmarshal(raw, a)
}

// fromDomain converts an order domain aggregate to its database representation.
// Maps all order attributes including the optional agent assignment, the jsonb
// addresses, and the full assignment ledger.
func fromDomain(aggregate *order.Order) OrderDTO {
	var agentID *uuid.UUID
	if id := aggregate.AgentID(); id != nil {
		raw := id.Bytes()
		agentID = &raw
	}

	var storeLat, storeLng *float64
	if loc := aggregate.StoreLocation(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		storeLat, storeLng = &lat, &lng
	}

	payment := aggregate.Payment()

	return OrderDTO{
		ID:               aggregate.ID().Bytes(),
		Version:          aggregate.Version(),
		SellerID:         aggregate.SellerID().Bytes(),
		PaymentMethod:    payment.Method().String(),
		PaymentAmount:    payment.Amount(),
		PaymentStatus:    payment.Status().String(),
		DeliveryCharge:   aggregate.DeliveryCharge(),
		StoreLat:         storeLat,
		StoreLng:         storeLng,
		PickupAddress:    addressFromDomain(aggregate.PickupAddress()),
		DeliveryAddress:  addressFromDomain(aggregate.DeliveryAddress()),
		Status:           aggregate.Status().String(),
		AgentID:          agentID,
		AgentResponse:    aggregate.AgentResponse().String(),
		Assignments:      assignmentsFromDomain(aggregate.Assignments()),
		OtpCode:          aggregate.OtpCode(),
		OtpVerified:      aggregate.OtpVerified(),
		OtpVerifiedAt:    aggregate.OtpVerifiedAt(),
		RequiresOtp:      aggregate.RequiresOtp(),
		EscalationReason: aggregate.EscalationReason(),
		EscalatedAt:      aggregate.EscalatedAt(),
		CreatedAt:        aggregate.CreatedAt(),
		PickedUpAt:       aggregate.PickedUpAt(),
		DeliveredAt:      aggregate.DeliveredAt(),
	}
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including the assignment ledger and
// OTP state using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	sellerID, err := kernel.UUIDFromBytes(dto.SellerID[:])
	if err != nil {
		return nil, err
	}

	var agentID *kernel.UUID
	if dto.AgentID != nil {
		aID, agentErr := kernel.UUIDFromBytes((*dto.AgentID)[:])
		if agentErr != nil {
			return nil, agentErr
		}
		agentID = &aID
	}

	method, err := order.PaymentMethodFromString(dto.PaymentMethod)
	if err != nil {
		return nil, err
	}

	paymentStatus, err := order.PaymentStatusFromString(dto.PaymentStatus)
	if err != nil {
		return nil, err
	}

	payment, err := order.NewPayment(method, dto.PaymentAmount, paymentStatus)
	if err != nil {
		return nil, err
	}

	status, err := order.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}

	response, err := order.ResponseFromString(dto.AgentResponse)
	if err != nil {
		return nil, err
	}

	var storeLocation *kernel.GeoPoint
	if dto.StoreLat != nil && dto.StoreLng != nil {
		loc, locErr := kernel.NewGeoPoint(*dto.StoreLat, *dto.StoreLng)
		if locErr != nil {
			return nil, locErr
		}
		storeLocation = &loc
	}

	pickupAddress, err := addressToDomain(dto.PickupAddress)
	if err != nil {
		return nil, err
	}

	deliveryAddress, err := addressToDomain(dto.DeliveryAddress)
	if err != nil {
		return nil, err
	}

	assignments, err := assignmentsToDomain(dto.Assignments)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.RestoreOrderParams{
		ID:               id,
		Version:          dto.Version,
		SellerID:         sellerID,
		Payment:          payment,
		DeliveryCharge:   dto.DeliveryCharge,
		StoreLocation:    storeLocation,
		PickupAddress:    pickupAddress,
		DeliveryAddress:  deliveryAddress,
		Status:           status,
		AgentID:          agentID,
		AgentResponse:    response,
		Assignments:      assignments,
		OtpCode:          dto.OtpCode,
		OtpVerified:      dto.OtpVerified,
		OtpVerifiedAt:    dto.OtpVerifiedAt,
		RequiresOtp:      dto.RequiresOtp,
		EscalationReason: dto.EscalationReason,
		EscalatedAt:      dto.EscalatedAt,
		CreatedAt:        dto.CreatedAt,
		PickedUpAt:       dto.PickedUpAt,
		DeliveredAt:      dto.DeliveredAt,
	})
}

// addressFromDomain converts a domain address to its jsonb representation.
func addressFromDomain(addr order.Address) AddressJSON {
	dto := AddressJSON{FullAddress: addr.FullAddress()}
	if loc := addr.Location(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		dto.Lat, dto.Lng = &lat, &lng
	}
	return dto
}

// addressToDomain converts a jsonb address back to the domain value.
// An empty column maps to the unset address.
func addressToDomain(dto AddressJSON) (order.Address, error) {
	var location *kernel.GeoPoint
	if dto.Lat != nil && dto.Lng != nil {
		loc, err := kernel.NewGeoPoint(*dto.Lat, *dto.Lng)
		if err != nil {
			return order.Address{}, err
		}
		location = &loc
	}

	return order.NewAddress(dto.FullAddress, location)
}

// assignmentsFromDomain converts the assignment ledger to its jsonb representation.
func assignmentsFromDomain(assignments []*order.Assignment) AssignmentsJSON {
	dtos := make(AssignmentsJSON, 0, len(assignments))
	for _, a := range assignments {
		dtos = append(dtos, AssignmentJSON{
			AgentID:     a.AgentID().Bytes(),
			AssignedAt:  a.AssignedAt(),
			Response:    a.Response().String(),
			RespondedAt: a.RespondedAt(),
		})
	}
	return dtos
}

// assignmentsToDomain converts the jsonb ledger back to domain entries.
func assignmentsToDomain(dtos AssignmentsJSON) ([]*order.Assignment, error) {
	assignments := make([]*order.Assignment, 0, len(dtos))
	for _, dto := range dtos {
		agentID, err := kernel.UUIDFromBytes(dto.AgentID[:])
		if err != nil {
			return nil, err
		}

		response, err := order.ResponseFromString(dto.Response)
		if err != nil {
			return nil, err
		}

		a, err := order.RestoreAssignment(agentID, dto.AssignedAt, response, dto.RespondedAt)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}
