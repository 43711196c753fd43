package geo

import (
	"fmt"
	"strconv"

	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is Earth's mean radius.
const EarthRadiusMeters = 6371000.0

// Coordinate is an immutable geographic point in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinate lies within the WGS84 bounds.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Key returns the exact-match cache key for this coordinate. Two
// coordinates share a key only if they are bitwise-equal degrees.
func (c Coordinate) Key() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + ":" +
		strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// RoundedKey returns the coordinate rounded to 4 decimal places (~11 m),
// used to tag an already-covered region during clustering.
func (c Coordinate) RoundedKey() string {
	return fmt.Sprintf("%.4f:%.4f", c.Latitude, c.Longitude)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Latitude, c.Longitude)
}

// Distance returns the great-circle distance between two coordinates in meters.
func Distance(a, b Coordinate) float64 {
	p1 := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	p2 := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}
