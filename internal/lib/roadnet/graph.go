package roadnet

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
)

// LaneSpec describes one lane of an in-memory road network
type LaneSpec struct {
	ID           string         `yaml:"id"`
	Points       []geo.Location `yaml:"points"`
	Successors   []string       `yaml:"successors"`
	Intersection bool           `yaml:"intersection"`
}

// NetworkSpec is the YAML document accepted by LoadGraph
type NetworkSpec struct {
	Name      string     `yaml:"name"`
	OpenDRIVE string     `yaml:"opendrive"`
	Lanes     []LaneSpec `yaml:"lanes"`
}

// lane is a directed centerline polyline
type lane struct {
	id           string
	points       []geo.Location
	cumulative   []float64 // arc length at each point
	successors   []*lane
	intersection bool
}

func (l *lane) length() float64 {
	return l.cumulative[len(l.cumulative)-1]
}

// locate returns the position and heading at arc length s, clamped to the lane
func (l *lane) locate(s float64) (geo.Location, float64) {
	if s <= 0 {
		return l.points[0], l.heading(0)
	}
	for i := 1; i < len(l.points); i++ {
		if s <= l.cumulative[i] {
			segment := l.cumulative[i] - l.cumulative[i-1]
			t := (s - l.cumulative[i-1]) / segment
			p := l.points[i-1].Add(l.points[i].Sub(l.points[i-1]).Scale(t))
			return p, l.heading(i - 1)
		}
	}
	last := len(l.points) - 1
	return l.points[last], l.heading(last - 1)
}

// heading returns the yaw in degrees of segment i
func (l *lane) heading(i int) float64 {
	d := l.points[i+1].Sub(l.points[i])
	return math.Atan2(d.Y, d.X) * 180 / math.Pi
}

// project returns the arc length of the closest point on the lane and its distance to loc
func (l *lane) project(loc geo.Location) (float64, float64) {
	bestS, bestDist := 0.0, math.Inf(1)
	for i := 0; i < len(l.points)-1; i++ {
		a, b := l.points[i], l.points[i+1]
		ab := b.Sub(a)
		t := loc.Sub(a).Dot(ab) / ab.Dot(ab)
		t = math.Max(0, math.Min(1, t))
		closest := a.Add(ab.Scale(t))
		if d := closest.DistanceTo(loc); d < bestDist {
			bestDist = d
			bestS = l.cumulative[i] + t*(l.cumulative[i+1]-l.cumulative[i])
		}
	}
	return bestS, bestDist
}

// Graph is an in-memory road network built from lane centerlines.
// It is read-only once built and safe for concurrent use.
type Graph struct {
	name      string
	openDrive string
	lanes     []*lane
	byID      map[string]*lane
}

// NewGraph validates the lane specs and links successors
func NewGraph(spec NetworkSpec) (*Graph, error) {
	if len(spec.Lanes) == 0 {
		return nil, errors.New("road network has no lanes")
	}

	g := &Graph{
		name:      spec.Name,
		openDrive: spec.OpenDRIVE,
		byID:      make(map[string]*lane, len(spec.Lanes)),
	}

	for _, ls := range spec.Lanes {
		if ls.ID == "" {
			return nil, errors.New("lane id is required")
		}
		if _, exists := g.byID[ls.ID]; exists {
			return nil, fmt.Errorf("duplicate lane id %q", ls.ID)
		}
		if len(ls.Points) < 2 {
			return nil, fmt.Errorf("lane %q must have at least 2 points", ls.ID)
		}

		l := &lane{
			id:           ls.ID,
			points:       ls.Points,
			cumulative:   make([]float64, len(ls.Points)),
			intersection: ls.Intersection,
		}
		for i := 1; i < len(ls.Points); i++ {
			segment := ls.Points[i-1].DistanceTo(ls.Points[i])
			if segment == 0 {
				return nil, fmt.Errorf("lane %q has repeated point at index %d", ls.ID, i)
			}
			l.cumulative[i] = l.cumulative[i-1] + segment
		}

		g.lanes = append(g.lanes, l)
		g.byID[ls.ID] = l
	}

	for _, ls := range spec.Lanes {
		l := g.byID[ls.ID]
		for _, succID := range ls.Successors {
			succ, ok := g.byID[succID]
			if !ok {
				return nil, fmt.Errorf("lane %q references unknown successor %q", ls.ID, succID)
			}
			l.successors = append(l.successors, succ)
		}
	}

	return g, nil
}

// LoadGraph reads a NetworkSpec YAML document and builds the graph
func LoadGraph(r io.Reader) (*Graph, error) {
	var spec NetworkSpec
	if err := yaml.NewDecoder(r).Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to decode road network: %w", err)
	}
	return NewGraph(spec)
}

// Name returns the network name
func (g *Graph) Name() string {
	return g.name
}

// OpenDRIVE returns the map description document attached to the network
func (g *Graph) OpenDRIVE() (string, error) {
	return g.openDrive, nil
}

// WaypointAt returns the waypoint on the nearest lane. Ties go to the lane declared first.
func (g *Graph) WaypointAt(loc geo.Location) (Waypoint, error) {
	var best *lane
	bestS, bestDist := 0.0, math.Inf(1)
	for _, l := range g.lanes {
		s, d := l.project(loc)
		if d < bestDist {
			best, bestS, bestDist = l, s, d
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no lane near (%.2f, %.2f)", loc.X, loc.Y)
	}
	return g.waypoint(best, bestS), nil
}

// LaneWaypoint returns the waypoint s meters along the lane with the given id
func (g *Graph) LaneWaypoint(id string, s float64) (Waypoint, error) {
	l, ok := g.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown lane %q", id)
	}
	return g.waypoint(l, math.Max(0, math.Min(s, l.length()))), nil
}

func (g *Graph) waypoint(l *lane, s float64) *graphWaypoint {
	loc, yaw := l.locate(s)
	return &graphWaypoint{
		graph:     g,
		lane:      l,
		s:         s,
		transform: geo.Transform{Location: loc, Rotation: geo.Rotation{Yaw: yaw}},
	}
}

// advance walks s meters from the start of l, fanning out across successors
func (g *Graph) advance(l *lane, s float64) []Waypoint {
	if s <= l.length() {
		return []Waypoint{g.waypoint(l, s)}
	}
	remaining := s - l.length()
	var out []Waypoint
	for _, succ := range l.successors {
		out = append(out, g.advance(succ, remaining)...)
	}
	return out
}

// graphWaypoint is a position s meters along a lane
type graphWaypoint struct {
	graph     *Graph
	lane      *lane
	s         float64
	transform geo.Transform
}

func (w *graphWaypoint) Transform() geo.Transform {
	return w.transform
}

func (w *graphWaypoint) IsIntersection() bool {
	return w.lane.intersection
}

func (w *graphWaypoint) Next(distance float64) ([]Waypoint, error) {
	if distance <= 0 {
		return nil, fmt.Errorf("%w: advance distance must be positive, got %v", ErrInvalidInput, distance)
	}
	return w.graph.advance(w.lane, w.s+distance), nil
}

// LaneID returns the id of the lane the waypoint lies on
func (w *graphWaypoint) LaneID() string {
	return w.lane.id
}
