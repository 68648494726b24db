package geo

import (
	"math"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Position is a WGS 84 coordinate pair produced by a position source.
type Position struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Fence is a circular boundary around the configured work site.
// RadiusMeters must be >= 0.
type Fence struct {
	Latitude     float64 `json:"lat"`
	Longitude    float64 `json:"lng"`
	RadiusMeters float64 `json:"radius_m"`
}

// Center returns the fence center as a Position.
func (f Fence) Center() Position {
	return Position{Latitude: f.Latitude, Longitude: f.Longitude}
}

// Evaluation classifies a position against a fence.
type Evaluation struct {
	Position       Position `json:"position"`
	Inside         bool     `json:"inside"`
	DistanceMeters float64  `json:"distance_m"`
}

// Distance returns the great-circle distance between two positions in meters
// using the haversine formula.
func Distance(a, b Position) float64 {
	phi1 := a.Latitude * math.Pi / 180
	phi2 := b.Latitude * math.Pi / 180
	dPhi := (b.Latitude - a.Latitude) * math.Pi / 180
	dLambda := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// Evaluate classifies p against f. The boundary is inclusive: a position
// exactly RadiusMeters away is inside. NaN coordinates classify as outside.
func Evaluate(p Position, f Fence) Evaluation {
	d := Distance(p, f.Center())
	if math.IsNaN(d) {
		return Evaluation{Position: p, Inside: false, DistanceMeters: d}
	}
	return Evaluation{
		Position:       p,
		Inside:         d <= f.RadiusMeters,
		DistanceMeters: d,
	}
}
