package geo

import (
	"fmt"
	"math"
)

// EarthRadius is the mean Earth radius in kilometers (IUGG)
const EarthRadius = 6371.0088

// Point is a latitude/longitude pair in decimal degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is a rectangular query region defined by its bottom-left and top-right corners
type Bounds struct {
	BottomLeft Point `json:"bottomLeft"`
	TopRight   Point `json:"topRight"`
}

// Validate checks that both corners are valid coordinates and that the
// bottom-left corner lies strictly below and to the left of the top-right one
func (b Bounds) Validate() error {
	for _, p := range []Point{b.BottomLeft, b.TopRight} {
		if p.Lat < -90 || p.Lat > 90 {
			return fmt.Errorf("latitude out of range: %v", p.Lat)
		}
		if p.Lng < -180 || p.Lng > 180 {
			return fmt.Errorf("longitude out of range: %v", p.Lng)
		}
	}
	if b.BottomLeft.Lat >= b.TopRight.Lat || b.BottomLeft.Lng >= b.TopRight.Lng {
		return fmt.Errorf("bottom-left corner %v must be below and left of top-right corner %v", b.BottomLeft, b.TopRight)
	}
	return nil
}

// Contains reports whether p lies inside the bounds (edges included)
func (b Bounds) Contains(p Point) bool {
	return p.Lat >= b.BottomLeft.Lat && p.Lat <= b.TopRight.Lat &&
		p.Lng >= b.BottomLeft.Lng && p.Lng <= b.TopRight.Lng
}

// Distance calculates the haversine great-circle distance between two points in kilometers
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180.0
	lng1 := a.Lng * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	lng2 := b.Lng * math.Pi / 180.0

	dLat := lat2 - lat1
	dLng := lng2 - lng1

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLng/2), 2)

	return 2 * EarthRadius * math.Asin(math.Sqrt(h))
}
