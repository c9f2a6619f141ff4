// Package geo holds pure coordinate helpers.
package geo

import "math"

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether the point lies within the coordinate ranges.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the straight-line distance between a and b, treating
// latitude and longitude as a flat plane. Only meaningful for short ranges.
func Distance(a, b Point) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lon-b.Lon)
}
