package maneuver

import (
	"fmt"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
)

// AdvanceUpTo walks the lane from start in DistanceStep increments until maxDistance
// has been covered or a waypoint inside an intersection is reached. It returns the
// last position and the distance actually travelled, which is short of maxDistance
// when an intersection came first. Where the lane branches the last successor is taken.
func AdvanceUpTo(world roadnet.Map, start geo.Location, maxDistance float64, opts Options) (geo.Location, float64, error) {
	wp, err := world.WaypointAt(start)
	if err != nil {
		return geo.Location{}, 0, fmt.Errorf("%w: resolve waypoint: %w", roadnet.ErrExternalService, err)
	}

	travelled := 0.0
	for !wp.IsIntersection() && travelled < maxDistance {
		next, err := step(wp, opts.DistanceStep)
		if err != nil {
			return geo.Location{}, 0, err
		}
		travelled += next.Transform().Location.DistanceTo(wp.Transform().Location)
		wp = next
	}

	return wp.Transform().Location, travelled, nil
}

// NearestCrossing walks the lane from start in CrossingStep increments and returns the
// first position inside an intersection.
//
// The walk has no distance bound. On a network with no reachable intersection it only
// ends when the lane does, or never on a loop, unless opts.MaxSteps is set.
func NearestCrossing(world roadnet.Map, start geo.Location, opts Options) (geo.Location, error) {
	wp, err := world.WaypointAt(start)
	if err != nil {
		return geo.Location{}, fmt.Errorf("%w: resolve waypoint: %w", roadnet.ErrExternalService, err)
	}

	for steps := 0; !wp.IsIntersection(); steps++ {
		if opts.exceeded(steps) {
			return geo.Location{}, fmt.Errorf("%w: no intersection after %d steps", roadnet.ErrUnreachable, steps)
		}
		successors, err := wp.Next(opts.CrossingStep)
		if err != nil {
			return geo.Location{}, fmt.Errorf("%w: advance waypoint: %w", roadnet.ErrExternalService, err)
		}
		if len(successors) == 0 {
			return geo.Location{}, fmt.Errorf("%w: lane ends before an intersection", roadnet.ErrExternalService)
		}
		wp = successors[0]
	}

	return wp.Transform().Location, nil
}

// step advances wp once, taking the last successor where the lane branches
func step(wp roadnet.Waypoint, distance float64) (roadnet.Waypoint, error) {
	successors, err := wp.Next(distance)
	if err != nil {
		return nil, fmt.Errorf("%w: advance waypoint: %w", roadnet.ErrExternalService, err)
	}
	if len(successors) == 0 {
		return nil, fmt.Errorf("%w: lane ends after %.1fm step", roadnet.ErrExternalService, distance)
	}
	return successors[len(successors)-1], nil
}
