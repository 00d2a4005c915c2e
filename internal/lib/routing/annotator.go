package routing

import (
	"context"
	"fmt"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
)

// Options configures route densification
type Options struct {
	// HopResolution is the planner sampling distance (meters)
	HopResolution float64 `koanf:"hop_resolution"`

	// SelfPairing traces every coarse waypoint to itself instead of to its successor.
	// Each planned segment then degenerates to the waypoint's own lane point. Only for
	// comparing against routes recorded with that pairing.
	SelfPairing bool `koanf:"self_pairing"`
}

// DefaultOptions returns a 2m hop resolution with successor pairing
func DefaultOptions() Options {
	return Options{HopResolution: 2.0}
}

// Annotator turns a coarse list of waypoints into a dense route and its geographic twin
type Annotator struct {
	metadata roadnet.MapMetadata
	planners roadnet.PlannerFactory
	opts     Options
}

// NewAnnotator creates an Annotator for one map
func NewAnnotator(metadata roadnet.MapMetadata, planners roadnet.PlannerFactory, opts Options) *Annotator {
	return &Annotator{
		metadata: metadata,
		planners: planners,
		opts:     opts,
	}
}

// Options returns the annotator's densification settings
func (a *Annotator) Options() Options {
	return a.opts
}

// BuildRoute plans a route through every consecutive pair of coarse waypoints,
// concatenating the segments in order, and projects each entry with the map's geo
// reference. The two returned routes have the same length and order.
func (a *Annotator) BuildRoute(ctx context.Context, coarse []geo.Location) (GeoRoute, roadnet.Route, error) {
	if len(coarse) < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 coarse waypoints, got %d", roadnet.ErrInvalidInput, len(coarse))
	}

	planner, err := a.planners(a.opts.HopResolution)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: create route planner: %w", roadnet.ErrExternalService, err)
	}

	var route roadnet.Route
	for i := 0; i < len(coarse)-1; i++ {
		from, to := coarse[i], coarse[i+1]
		if a.opts.SelfPairing {
			to = coarse[i]
		}

		segment, err := planner.TraceRoute(ctx, from, to)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: trace segment %d: %w", roadnet.ErrExternalService, i, err)
		}
		route = append(route, segment...)
	}

	ref, err := ResolveGeoReference(a.metadata)
	if err != nil {
		return nil, nil, err
	}

	return ToGeoRoute(route, ref), route, nil
}

// ToGeoRoute projects every route entry using ref, keeping the maneuver tags
func ToGeoRoute(route roadnet.Route, ref geo.GeoReference) GeoRoute {
	geoRoute := make(GeoRoute, len(route))
	for i, entry := range route {
		geoRoute[i] = GeoRouteEntry{
			Coordinate: geo.Project(ref, entry.Waypoint.Transform().Location),
			Option:     entry.Option,
		}
	}
	return geoRoute
}
