package order

import (
	"dispatch/internal/core/domain/model/kernel"
)

// Address is a delivery or pickup address: a free-form postal string with
// optional geographic coordinates. The zero value is a valid "unset" address.
type Address struct {
	fullAddress string
	location    *kernel.GeoPoint
}

// NewAddress creates an Address. The location is optional; when provided it
// must be a constructed GeoPoint.
func NewAddress(fullAddress string, location *kernel.GeoPoint) (Address, error) {
	if location != nil {
		if err := location.Validate(); err != nil {
			return Address{}, err
		}
	}
	return Address{fullAddress: fullAddress, location: location}, nil
}

// FullAddress returns the postal string, which may be empty.
func (a Address) FullAddress() string {
	return a.fullAddress
}

// Location returns the coordinates if known, nil otherwise.
func (a Address) Location() *kernel.GeoPoint {
	return a.location
}

// IsSet reports whether the address carries either a postal string or coordinates.
func (a Address) IsSet() bool {
	return a.fullAddress != "" || a.location != nil
}
