package kernel

import (
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
)

const (
	// LatitudeMin is the minimum valid latitude in decimal degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the maximum valid latitude in decimal degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the minimum valid longitude in decimal degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the maximum valid longitude in decimal degrees.
	LongitudeMax = 180.0

	// earthRadiusMeters is the mean Earth radius used by the haversine formula.
	earthRadiusMeters = 6371000.0
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an improperly
// initialized GeoPoint. GeoPoints must be created via NewGeoPoint to ensure
// their coordinates were validated.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint constructor")

// GeoPoint represents a geographic position in decimal degrees.
// GeoPoint is an immutable value object: its coordinates are validated once
// at construction and never change afterwards. The zero value is invalid and
// fails validation - use NewGeoPoint to create instances.
//
// Example:
//
//	point, err := kernel.NewGeoPoint(12.9716, 77.5946)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Println(point) // Output: GeoPoint(12.971600,77.594600)
type GeoPoint struct {
	lat           float64
	lng           float64
	isConstructed bool
}

// NewGeoPoint creates a new GeoPoint with the specified coordinates.
// Latitude must lie within [-90, 90] and longitude within [-180, 180];
// a coordinate outside its bounds yields a validation error.
func NewGeoPoint(lat float64, lng float64) (GeoPoint, error) {
	if lat < LatitudeMin || lat > LatitudeMax || math.IsNaN(lat) {
		return GeoPoint{}, errs.NewValueIsOutOfRangeError("latitude", lat, LatitudeMin, LatitudeMax)
	}
	if lng < LongitudeMin || lng > LongitudeMax || math.IsNaN(lng) {
		return GeoPoint{}, errs.NewValueIsOutOfRangeError("longitude", lng, LongitudeMin, LongitudeMax)
	}

	return GeoPoint{lat: lat, lng: lng, isConstructed: true}, nil
}

// Validate checks if the GeoPoint was properly constructed via NewGeoPoint.
// The zero value is invalid and fails this validation.
func (p GeoPoint) Validate() error {
	if !p.isConstructed {
		return ErrGeoPointIsNotConstructed
	}
	return nil
}

// Lat returns the latitude in decimal degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in decimal degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

// String returns a human-readable representation in the format
// "GeoPoint(lat,lng)" with six decimal places.
// This method implements the fmt.Stringer interface.
func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%.6f,%.6f)", p.lat, p.lng)
}

// IsEqual compares two points for coordinate equality.
func (p GeoPoint) IsEqual(other GeoPoint) bool {
	return p.lat == other.lat && p.lng == other.lng
}

// DistanceTo estimates the great-circle distance to another point using the
// haversine formula with a mean Earth radius of 6,371,000 meters.
//
// The distance is "unknown" - the second return value is false - when either
// point was not constructed through NewGeoPoint. Unknown distances exclude
// the pair from any ranking; they are never treated as zero.
//
// Returns:
//   - float64: distance in meters
//   - bool: true if both points carry valid coordinates
func (p GeoPoint) DistanceTo(other GeoPoint) (float64, bool) {
	if p.Validate() != nil || other.Validate() != nil {
		return 0, false
	}

	lat1 := toRadians(p.lat)
	lat2 := toRadians(other.lat)
	dLat := toRadians(other.lat - p.lat)
	dLng := toRadians(other.lng - p.lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c, true
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
