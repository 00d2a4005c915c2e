package maneuver

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
)

// EstimateCrossing estimates where the lanes of two agents cross. Each agent's path
// is the line through its lane position and the position DistanceStep ahead. The
// crossing is reported at zero height since both agents are assumed to share the
// local ground plane. Parallel or coincident paths yield NoIntersection.
func EstimateCrossing(world roadnet.Map, ego, other geo.Location, opts Options) (Crossing, error) {
	p1, p2, err := pathSegment(world, ego, opts.DistanceStep)
	if err != nil {
		return NoIntersection, fmt.Errorf("ego path: %w", err)
	}
	q1, q2, err := pathSegment(world, other, opts.DistanceStep)
	if err != nil {
		return NoIntersection, fmt.Errorf("other path: %w", err)
	}
	return IntersectLines(p1, p2, q1, q2), nil
}

// IntersectLines intersects the line through p1 and p2 with the line through q1 and q2
// in the XY plane using homogeneous coordinates.
func IntersectLines(p1, p2, q1, q2 geo.Location) Crossing {
	line1 := lift(p1).Cross(lift(p2))
	line2 := lift(q1).Cross(lift(q2))
	point := line1.Cross(line2)

	if point.Z == 0 {
		return NoIntersection
	}
	return Crossing{
		Location: geo.Location{X: point.X / point.Z, Y: point.Y / point.Z},
		Found:    true,
	}
}

// lift maps a ground-plane point to homogeneous coordinates
func lift(l geo.Location) r3.Vector {
	return r3.Vector{X: l.X, Y: l.Y, Z: 1}
}

// pathSegment resolves the lane position at loc and its first successor step ahead
func pathSegment(world roadnet.Map, loc geo.Location, step float64) (geo.Location, geo.Location, error) {
	wp, err := world.WaypointAt(loc)
	if err != nil {
		return geo.Location{}, geo.Location{}, fmt.Errorf("%w: resolve waypoint: %w", roadnet.ErrExternalService, err)
	}
	next, err := wp.Next(step)
	if err != nil {
		return geo.Location{}, geo.Location{}, fmt.Errorf("%w: advance waypoint: %w", roadnet.ErrExternalService, err)
	}
	if len(next) == 0 {
		return geo.Location{}, geo.Location{}, fmt.Errorf("%w: lane ends at (%.2f, %.2f)", roadnet.ErrExternalService, loc.X, loc.Y)
	}
	return wp.Transform().Location, next[0].Transform().Location, nil
}
