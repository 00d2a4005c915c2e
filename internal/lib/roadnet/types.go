package roadnet

import (
	"context"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
)

// Waypoint is a handle into a road network. Waypoints are owned by the network
// that produced them and are only meant to be held for the duration of one computation.
type Waypoint interface {
	// Transform returns the position and orientation of the waypoint
	Transform() geo.Transform

	// IsIntersection reports whether the waypoint lies inside a junction
	IsIntersection() bool

	// Next returns the waypoints reached by driving distance meters along the lane.
	// The result holds zero entries at a dead end, and more than one where the lane branches.
	Next(distance float64) ([]Waypoint, error)
}

// Map resolves world locations onto the road network
type Map interface {
	// WaypointAt returns the lane waypoint closest to loc
	WaypointAt(loc geo.Location) (Waypoint, error)
}

// MapMetadata exposes the map description document
type MapMetadata interface {
	// OpenDRIVE returns the map description as an OpenDRIVE XML document
	OpenDRIVE() (string, error)
}

// World is a road network that also carries its own description
type World interface {
	Map
	MapMetadata
}

// RoutePlanner connects two locations with a dense, tagged route
type RoutePlanner interface {
	TraceRoute(ctx context.Context, from, to geo.Location) (Route, error)
}

// PlannerFactory builds a RoutePlanner that samples its routes every resolution meters
type PlannerFactory func(resolution float64) (RoutePlanner, error)

// RouteOption tags the maneuver associated with a route edge
type RouteOption int

const (
	Void            RouteOption = -1
	Left            RouteOption = 1
	Right           RouteOption = 2
	Straight        RouteOption = 3
	LaneFollow      RouteOption = 4
	ChangeLaneLeft  RouteOption = 5
	ChangeLaneRight RouteOption = 6
)

// String returns the option name
func (o RouteOption) String() string {
	switch o {
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	case Straight:
		return "STRAIGHT"
	case LaneFollow:
		return "LANEFOLLOW"
	case ChangeLaneLeft:
		return "CHANGELANELEFT"
	case ChangeLaneRight:
		return "CHANGELANERIGHT"
	default:
		return "VOID"
	}
}

// RouteEntry pairs a waypoint with the maneuver used to reach it
type RouteEntry struct {
	Waypoint Waypoint
	Option   RouteOption
}

// Route is an ordered sequence of entries in driving order; the first entry is the start
type Route []RouteEntry
