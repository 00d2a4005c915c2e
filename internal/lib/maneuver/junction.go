package maneuver

import (
	"fmt"
	"math"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
)

// SelectBranch picks the candidate matching dir. Each candidate is advanced
// JunctionProbeDistance along its own lane and compared by the signed 2-D cross
// product between the heading (current - previous) and the offset from current
// to the probe. Right takes the minimum, Left the maximum and Straight the value
// closest to zero. Ties go to the earliest candidate.
//
// The advanced probe waypoint of the chosen branch is returned, not the
// candidate itself, so callers resume the walk from the probe rather than
// from the junction entry.
func SelectBranch(previous, current geo.Location, candidates []roadnet.Waypoint, dir Direction, opts Options) (roadnet.Waypoint, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no branch candidates", roadnet.ErrInvalidInput)
	}

	heading := current.Sub(previous).Flat()

	var selected roadnet.Waypoint
	var selectedCross float64
	for i, candidate := range candidates {
		probes, err := candidate.Next(opts.JunctionProbeDistance)
		if err != nil {
			return nil, fmt.Errorf("%w: probe branch %d: %w", roadnet.ErrExternalService, i, err)
		}
		if len(probes) == 0 {
			return nil, fmt.Errorf("%w: branch %d ends within %.1fm", roadnet.ErrExternalService, i, opts.JunctionProbeDistance)
		}
		probe := probes[0]

		offset := probe.Transform().Location.Sub(current).Flat()
		cross := heading.Cross2D(offset)

		if selected == nil || better(dir, cross, selectedCross) {
			selected, selectedCross = probe, cross
		}
	}

	return selected, nil
}

// better reports whether cross strictly beats best for the requested direction
func better(dir Direction, cross, best float64) bool {
	switch dir {
	case Left:
		return cross > best
	case Right:
		return cross < best
	default:
		return math.Abs(cross) < math.Abs(best)
	}
}

// walkState tracks the junction exit walk
type walkState int

const (
	following walkState = iota
	atJunction
	done
)

// SeekJunctionExit follows the lane from start to the next junction, takes the
// branch matching dir and returns the first waypoint past the junction.
//
// For turns the exit is where the path straightens out: the angle between the last
// two one-step segments drops under ExitAngleThreshold. Going straight, the exit is
// the first waypoint no longer flagged as part of the intersection.
//
// The walk is unbounded unless opts.MaxSteps is set; a road network with no
// junction ahead otherwise never returns.
func SeekJunctionExit(start roadnet.Waypoint, dir Direction, opts Options) (roadnet.Waypoint, error) {
	threshold := opts.ExitAngleThreshold * math.Pi / 180
	state := following
	cursor := start

	// Positions of every waypoint visited after the start
	var visited []geo.Location

	for steps := 0; state != done; steps++ {
		if opts.exceeded(steps) {
			return nil, fmt.Errorf("%w: no junction exit after %d steps", roadnet.ErrUnreachable, steps)
		}

		transform := cursor.Transform()
		location := transform.Location
		projected := location.Add(transform.Rotation.ForwardVector())

		choices, err := cursor.Next(opts.SamplingRadius)
		if err != nil {
			return nil, fmt.Errorf("%w: advance from (%.2f, %.2f): %w", roadnet.ErrExternalService, location.X, location.Y, err)
		}

		switch {
		case len(choices) > 1:
			state = atJunction
			cursor, err = SelectBranch(location, projected, choices, dir, opts)
			if err != nil {
				return nil, err
			}
		case len(choices) == 1:
			cursor = choices[0]
		default:
			return nil, fmt.Errorf("%w: lane ends at (%.2f, %.2f) before a junction exit", roadnet.ErrExternalService, location.X, location.Y)
		}
		visited = append(visited, cursor.Transform().Location)

		if state != atJunction {
			continue
		}
		if dir != Straight && len(visited) >= 3 {
			n := len(visited)
			last := visited[n-1].Sub(visited[n-2])
			prior := visited[n-2].Sub(visited[n-3])
			if geo.AngleBetween(last, prior) < threshold {
				state = done
			}
		} else if !cursor.IsIntersection() {
			state = done
		}
	}

	return cursor, nil
}
