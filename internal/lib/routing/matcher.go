package routing

import (
	"errors"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
)

// routeMatcher implements the RouteMatcher interface
type routeMatcher struct {
	geoUtils         geo.GeoUtils
	onRouteThreshold float64 // Distance in meters for OnRoute classification
	nearbyThreshold  float64 // Distance in meters for Nearby classification
}

// NewRouteMatcher creates a new RouteMatcher implementation
func NewRouteMatcher(onRouteThreshold, nearbyThreshold float64) RouteMatcher {
	return &routeMatcher{
		geoUtils:         geo.NewGeoUtils(),
		onRouteThreshold: onRouteThreshold,
		nearbyThreshold:  nearbyThreshold,
	}
}

// Classify classifies a point by its distance to the route polyline
func (r *routeMatcher) Classify(point geo.Point, route GeoRoute) (RouteClassification, float64, error) {
	if len(route) == 0 {
		return Distant, 0, errors.New("route has no points")
	}

	distance, err := r.geoUtils.PointToPolyline(point, route.Polyline())
	if err != nil {
		return Distant, 0, err
	}

	switch {
	case distance <= r.onRouteThreshold:
		return OnRoute, distance, nil
	case distance <= r.nearbyThreshold:
		return Nearby, distance, nil
	default:
		return Distant, distance, nil
	}
}

// Summarize measures the route and counts its maneuver tags
func (r *routeMatcher) Summarize(route GeoRoute) (Summary, error) {
	if len(route) == 0 {
		return Summary{}, errors.New("route has no points")
	}

	length, err := r.geoUtils.PolylineLength(route.Polyline())
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Entries:      len(route),
		LengthMeters: length,
		Start:        route[0].Coordinate,
		End:          route[len(route)-1].Coordinate,
		Maneuvers:    make(map[roadnet.RouteOption]int),
	}
	for _, entry := range route {
		summary.Maneuvers[entry.Option]++
	}
	return summary, nil
}
