package roadnet

import (
	"context"
	"fmt"
	"math"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
)

// Heading change below which a junction lane counts as going straight (degrees)
const straightTolerance = 35.0

// GraphPlanner traces routes over a Graph with breadth-first search on lanes
type GraphPlanner struct {
	graph      *Graph
	resolution float64
}

// NewPlanner returns a planner sampling every resolution meters. It satisfies PlannerFactory.
func (g *Graph) NewPlanner(resolution float64) (RoutePlanner, error) {
	if resolution <= 0 {
		return nil, fmt.Errorf("%w: planner resolution must be positive, got %v", ErrInvalidInput, resolution)
	}
	return &GraphPlanner{graph: g, resolution: resolution}, nil
}

// span is the part of one lane covered by a route
type span struct {
	lane     *lane
	from, to float64
}

// TraceRoute returns waypoints every resolution meters from the lane position nearest
// from to the lane position nearest to, always including both ends.
func (p *GraphPlanner) TraceRoute(ctx context.Context, from, to geo.Location) (Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start, err := p.graph.WaypointAt(from)
	if err != nil {
		return nil, err
	}
	end, err := p.graph.WaypointAt(to)
	if err != nil {
		return nil, err
	}
	startWp := start.(*graphWaypoint)
	endWp := end.(*graphWaypoint)

	spans, err := p.spans(startWp, endWp)
	if err != nil {
		return nil, err
	}

	total := 0.0
	for _, sp := range spans {
		total += sp.to - sp.from
	}

	var route Route
	for d := 0.0; ; d += p.resolution {
		if d > total {
			d = total
		}
		route = append(route, p.entryAt(spans, d))
		if d >= total {
			break
		}
	}
	return route, nil
}

// spans resolves the lane sequence between two waypoints
func (p *GraphPlanner) spans(start, end *graphWaypoint) ([]span, error) {
	if start.lane == end.lane && end.s >= start.s {
		return []span{{lane: start.lane, from: start.s, to: end.s}}, nil
	}

	// Breadth-first search over successors; the start lane may be revisited as the goal
	parent := map[*lane]*lane{}
	visited := map[*lane]bool{}
	queue := []*lane{start.lane}
	found := false
	for len(queue) > 0 && !found {
		current := queue[0]
		queue = queue[1:]
		for _, succ := range current.successors {
			if visited[succ] {
				continue
			}
			visited[succ] = true
			parent[succ] = current
			if succ == end.lane {
				found = true
				break
			}
			queue = append(queue, succ)
		}
	}
	if !found {
		return nil, fmt.Errorf("no route from lane %q to lane %q", start.lane.id, end.lane.id)
	}

	path := []*lane{end.lane}
	for l := parent[end.lane]; l != start.lane; l = parent[l] {
		path = append([]*lane{l}, path...)
	}

	spans := []span{{lane: start.lane, from: start.s, to: start.lane.length()}}
	for _, l := range path[:len(path)-1] {
		spans = append(spans, span{lane: l, from: 0, to: l.length()})
	}
	return append(spans, span{lane: end.lane, from: 0, to: end.s}), nil
}

func (p *GraphPlanner) entryAt(spans []span, d float64) RouteEntry {
	for i, sp := range spans {
		length := sp.to - sp.from
		if d <= length || i == len(spans)-1 {
			s := sp.from + math.Min(d, length)
			return RouteEntry{Waypoint: p.graph.waypoint(sp.lane, s), Option: laneOption(sp.lane)}
		}
		d -= length
	}
	return RouteEntry{}
}

// laneOption classifies junction lanes by their heading change
func laneOption(l *lane) RouteOption {
	if !l.intersection {
		return LaneFollow
	}
	entry := l.points[1].Sub(l.points[0])
	exit := l.points[len(l.points)-1].Sub(l.points[len(l.points)-2])
	angle := geo.AngleBetween(entry, exit) * 180 / math.Pi
	switch {
	case angle < straightTolerance:
		return Straight
	case entry.Cross2D(exit) > 0:
		return Left
	default:
		return Right
	}
}
