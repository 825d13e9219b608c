// Package geo holds the small amount of coordinate math the planner needs.
// Distances here are approximations: routing decisions are made on walking
// distances from the oracle, and these only serve as fallbacks and for
// shape classification.
package geo

import (
	"fmt"
	"math"

	"github.com/gabriellangon/narrando-backend/internal/model"
)

const (
	// metersPerDegree approximates one degree of latitude.
	metersPerDegree = 111_000.0

	// WalkingSpeedMS is the assumed walking speed, 5 km/h.
	WalkingSpeedMS = 1.39
)

// PlanarMeters is the deterministic fallback distance used when the walking
// oracle is unavailable: sqrt(dLat²+dLng²) scaled at the equatorial
// approximation. Conservative, not geodesically exact.
func PlanarMeters(a, b model.Location) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return math.Sqrt(dLat*dLat+dLng*dLng) * metersPerDegree
}

// ScaledMeters is a planar distance with longitude corrected by cos(lat),
// suitable for comparing offsets within one compact cluster.
func ScaledMeters(a, b model.Location, cosLat float64) float64 {
	dLat := (a.Lat - b.Lat) * metersPerDegree
	dLng := (a.Lng - b.Lng) * metersPerDegree * cosLat
	return math.Sqrt(dLat*dLat + dLng*dLng)
}

// WalkingMinutes converts a distance to whole walking minutes at 5 km/h.
func WalkingMinutes(distanceM float64) int {
	return int(distanceM / WalkingSpeedMS / 60)
}

// WalkingDistanceM converts a per-hop minute budget into meters.
func WalkingDistanceM(minutes int) float64 {
	return float64(minutes) * 60 * WalkingSpeedMS
}

// PairKey identifies a directed coordinate pair at 6-decimal precision
// (~0.11 m). Cache entries are directional; callers probe both directions.
func PairKey(origin, dest model.Location) string {
	return fmt.Sprintf("%.6f,%.6f-%.6f,%.6f", origin.Lat, origin.Lng, dest.Lat, dest.Lng)
}

// CoordKey identifies a single coordinate at 7-decimal precision, the
// resolution at which two stops count as coincident.
func CoordKey(loc model.Location) string {
	return fmt.Sprintf("%.7f,%.7f", loc.Lat, loc.Lng)
}

// Bound is an axis-aligned bounding box over a point set.
type Bound struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundOf computes the bounding box of the given points.
func BoundOf(points []model.Point) Bound {
	b := Bound{MinLat: math.Inf(1), MaxLat: math.Inf(-1), MinLng: math.Inf(1), MaxLng: math.Inf(-1)}
	for _, p := range points {
		b.MinLat = math.Min(b.MinLat, p.Location.Lat)
		b.MaxLat = math.Max(b.MaxLat, p.Location.Lat)
		b.MinLng = math.Min(b.MinLng, p.Location.Lng)
		b.MaxLng = math.Max(b.MaxLng, p.Location.Lng)
	}
	return b
}

// WidthHeightM returns the box dimensions in meters, longitude scaled by
// cos of the mid latitude. Both are clamped away from zero so callers can
// take ratios.
func (b Bound) WidthHeightM() (width, height float64) {
	midLat := (b.MinLat + b.MaxLat) / 2 * math.Pi / 180
	height = (b.MaxLat - b.MinLat) * metersPerDegree
	width = (b.MaxLng - b.MinLng) * metersPerDegree * math.Cos(midLat)
	return math.Max(width, 1e-6), math.Max(height, 1e-6)
}

// CosMidLat returns cos of the box's mid latitude, for planar scaling.
func (b Bound) CosMidLat() float64 {
	return math.Cos((b.MinLat + b.MaxLat) / 2 * math.Pi / 180)
}

// Centroid returns the arithmetic mean of the point locations.
func Centroid(points []model.Point) model.Location {
	var lat, lng float64
	for _, p := range points {
		lat += p.Location.Lat
		lng += p.Location.Lng
	}
	n := float64(len(points))
	return model.Location{Lat: lat / n, Lng: lng / n}
}
