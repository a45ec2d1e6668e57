package maps

import (
	"context"
	"encoding/json"
)

// LatLng is a WGS84 point.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Route is a single computed multi-stop route.
type Route struct {
	DistanceMeters  int               `json:"distance_m"`
	DurationSeconds int               `json:"duration_s"`
	Polyline        string            `json:"polyline"`
	Legs            []json.RawMessage `json:"legs"`
}

// Router computes a route through points in the given order: the first is
// the origin, the last the destination and the rest intermediates.
type Router interface {
	ComputeRoute(ctx context.Context, points []LatLng, mode string) (Route, error)
}

// Imagery returns a street-level image URL near a point, or "" when no
// imagery is available.
type Imagery interface {
	ImageURL(ctx context.Context, at LatLng, radiusM int, source string) (string, error)
}
