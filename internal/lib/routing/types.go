package routing

import (
	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
)

// GeoRouteEntry is a projected route waypoint with its maneuver tag
type GeoRouteEntry struct {
	Coordinate geo.GeoCoordinate   `json:"coordinate"`
	Option     roadnet.RouteOption `json:"option"`
}

// GeoRoute runs parallel to a roadnet.Route: one entry per route entry, in the same order
type GeoRoute []GeoRouteEntry

// Polyline returns the route as a geographic polyline
func (r GeoRoute) Polyline() geo.Polyline {
	points := make([]geo.Point, len(r))
	for i, entry := range r {
		points[i] = entry.Coordinate.Point()
	}
	return geo.Polyline{Points: points}
}

// Summary describes a GeoRoute for logs and command output
type Summary struct {
	Entries      int                         `json:"entries"`
	LengthMeters float64                     `json:"length_meters"`
	Start        geo.GeoCoordinate           `json:"start"`
	End          geo.GeoCoordinate           `json:"end"`
	Maneuvers    map[roadnet.RouteOption]int `json:"maneuvers"`
}

// RouteClassification represents the relationship between a point and a route
type RouteClassification string

const (
	OnRoute RouteClassification = "on_route" // within the on-route threshold of the polyline
	Nearby  RouteClassification = "nearby"   // within the nearby threshold
	Distant RouteClassification = "distant"  // beyond both thresholds
)

// RouteMatcher classifies positions against a planned route
type RouteMatcher interface {
	// Classify a geographic point against a route
	Classify(point geo.Point, route GeoRoute) (RouteClassification, float64, error)

	// Summarize route length and maneuver counts
	Summarize(route GeoRoute) (Summary, error)
}

// NewRouteMatcher is implemented in matcher.go
