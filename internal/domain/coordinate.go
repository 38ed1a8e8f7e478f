package domain

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Coordinate is a geographic position in degrees. No datum transformation is
// performed anywhere; callers supply coordinates in the datum of the coverage
// geometry.
type Coordinate struct {
	Lon float64
	Lat float64
}

// NewCoordinate creates a coordinate from longitude and latitude.
func NewCoordinate(lon, lat float64) Coordinate {
	return Coordinate{Lon: lon, Lat: lat}
}

// Validate checks the coordinate ranges.
func (c Coordinate) Validate() error {
	if c.Lon < -180 || c.Lon > 180 {
		return &ValidationError{
			Field:      "longitude",
			Value:      c.Lon,
			Constraint: "[-180, 180]",
			Message:    "longitude must be between -180 and 180",
		}
	}
	if c.Lat < -90 || c.Lat > 90 {
		return &ValidationError{
			Field:      "latitude",
			Value:      c.Lat,
			Constraint: "[-90, 90]",
			Message:    "latitude must be between -90 and 90",
		}
	}
	return nil
}

// Point returns the orb representation.
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

// String returns a WKT-like representation.
func (c Coordinate) String() string {
	return fmt.Sprintf("POINT(%f %f)", c.Lon, c.Lat)
}
