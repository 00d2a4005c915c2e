// Package maneuver makes the geometric decisions a scenario needs while it runs:
// which branch to take at a junction, where two agents' paths cross and how far
// an agent can travel along its lane.
//
// Every function is synchronous and keeps no state between calls. Waypoints are
// obtained from the caller's road network and dropped when the call returns.
package maneuver

import (
	"fmt"
	"strings"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
)

// Direction is the turn requested at a junction
type Direction int

const (
	Straight Direction = iota
	Left
	Right
)

// String returns the lower-case direction name
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "straight"
	}
}

// ParseDirection accepts left, right or straight in any case
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "straight", "":
		return Straight, nil
	default:
		return Straight, fmt.Errorf("unknown direction %q", s)
	}
}

// Options holds the empirically tuned thresholds used by the searches
type Options struct {
	// SamplingRadius is the step of the junction exit walk (meters)
	SamplingRadius float64 `yaml:"sampling_radius" koanf:"sampling_radius"`

	// JunctionProbeDistance is how far each branch candidate is advanced to find its heading (meters)
	JunctionProbeDistance float64 `yaml:"junction_probe_distance" koanf:"junction_probe_distance"`

	// ExitAngleThreshold is the turning angle under which a turn counts as finished (degrees)
	ExitAngleThreshold float64 `yaml:"exit_angle_threshold_deg" koanf:"exit_angle_threshold_deg"`

	// DistanceStep is the step used by AdvanceUpTo and by path crossing successors (meters)
	DistanceStep float64 `yaml:"distance_step" koanf:"distance_step"`

	// CrossingStep is the step used by NearestCrossing (meters)
	CrossingStep float64 `yaml:"crossing_step" koanf:"crossing_step"`

	// MaxSteps caps the unbounded walks. Zero leaves them unbounded.
	MaxSteps int `yaml:"max_steps" koanf:"max_steps"`
}

// DefaultOptions returns the thresholds used by the scenario library
func DefaultOptions() Options {
	return Options{
		SamplingRadius:        1.0,
		JunctionProbeDistance: 20.0,
		ExitAngleThreshold:    0.1,
		DistanceStep:          1.0,
		CrossingStep:          2.0,
	}
}

// Crossing is the result of EstimateCrossing. Found is false when the two paths
// are parallel or coincident.
type Crossing struct {
	Location geo.Location
	Found    bool
}

// NoIntersection is returned for parallel or coincident paths
var NoIntersection = Crossing{}

// exceeded reports whether a walk has run past its step budget
func (o Options) exceeded(steps int) bool {
	return o.MaxSteps > 0 && steps >= o.MaxSteps
}
