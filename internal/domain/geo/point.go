package geo

import (
	"errors"
	"math"
)

// Point is a WGS84 coordinate pair.
type Point struct {
	Latitude  float64
	Longitude float64
}

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// NewPoint validates the coordinate ranges and returns a Point.
func NewPoint(lat, lng float64) (Point, error) {
	p := Point{Latitude: lat, Longitude: lng}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Validate checks that the point lies within the valid WGS84 ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return ErrInvalidCoordinates
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return ErrInvalidCoordinates
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// DegreeTolerance converts a kilometer tolerance to a degree tolerance using
// the flat ~111 km-per-degree approximation. Acceptable at city scale for both
// axes; not geodesically exact.
func DegreeTolerance(km float64) float64 {
	return km / 111.0
}

// WithinBox reports whether b falls inside the axis-aligned box of the given
// degree tolerance centered on a. The check is an independent per-axis
// absolute-difference comparison, not a circular radius.
func WithinBox(a, b Point, tolDeg float64) bool {
	return math.Abs(a.Latitude-b.Latitude) <= tolDeg &&
		math.Abs(a.Longitude-b.Longitude) <= tolDeg
}

// HaversineKM returns the great-circle distance between two points in km.
func HaversineKM(a, b Point) float64 {
	const earthRadiusKM = 6371.0

	la1 := a.Latitude * math.Pi / 180
	la2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(la1)*math.Cos(la2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKM * c
}
