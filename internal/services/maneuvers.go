package services

import (
	"context"
	"fmt"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/maneuver"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
	"github.com/dpup/scenario-geometry/server/internal/logging"
)

// ManeuverService answers junction, crossing and distance queries against a
// single world
type ManeuverService struct {
	world roadnet.Map
	opts  maneuver.Options
	log   logging.Logger
}

// NewManeuverService wires a ManeuverService to a world and optional logger.
func NewManeuverService(world roadnet.Map, opts maneuver.Options, log logging.Logger) *ManeuverService {
	if log == nil {
		log = logging.Nop()
	}
	return &ManeuverService{
		world: world,
		opts:  opts,
		log:   log,
	}
}

// ExitJunction walks from the lane point nearest start through the next
// junction, taking the requested turn, and returns the first waypoint past it
func (s *ManeuverService) ExitJunction(ctx context.Context, start geo.Location, dir maneuver.Direction) (roadnet.Waypoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wp, err := s.world.WaypointAt(start)
	if err != nil {
		err = fmt.Errorf("%w: snap start: %w", roadnet.ErrExternalService, err)
		s.record("exit_junction", err)
		return nil, err
	}

	exit, err := maneuver.SeekJunctionExit(wp, dir, s.opts)
	s.record("exit_junction", err, "direction", dir.String(), "start", start)
	if err != nil {
		return nil, err
	}
	return exit, nil
}

// Crossing estimates where the lanes of two actors intersect
func (s *ManeuverService) Crossing(ctx context.Context, ego, other geo.Location) (maneuver.Crossing, error) {
	if err := ctx.Err(); err != nil {
		return maneuver.Crossing{}, err
	}

	crossing, err := maneuver.EstimateCrossing(s.world, ego, other, s.opts)
	s.record("crossing", err, "found", crossing.Found)
	return crossing, err
}

// Advance moves along the lane up to maxDistance, stopping at the first
// junction, and returns the reached location and distance travelled
func (s *ManeuverService) Advance(ctx context.Context, start geo.Location, maxDistance float64) (geo.Location, float64, error) {
	if err := ctx.Err(); err != nil {
		return geo.Location{}, 0, err
	}

	loc, travelled, err := maneuver.AdvanceUpTo(s.world, start, maxDistance, s.opts)
	s.record("advance", err, "max_distance", maxDistance, "travelled", travelled)
	return loc, travelled, err
}

// NearestCrossing returns the location of the first junction ahead of start
func (s *ManeuverService) NearestCrossing(ctx context.Context, start geo.Location) (geo.Location, error) {
	if err := ctx.Err(); err != nil {
		return geo.Location{}, err
	}

	loc, err := maneuver.NearestCrossing(s.world, start, s.opts)
	s.record("nearest_crossing", err, "start", start)
	return loc, err
}

func (s *ManeuverService) record(operation string, err error, keysAndValues ...interface{}) {
	maneuverQueriesTotal.WithLabelValues(operation, outcome(err)).Inc()
	if err != nil {
		s.log.Warnw("Maneuver query failed", append([]interface{}{"operation", operation, "error", err}, keysAndValues...)...)
		return
	}
	s.log.Debugw("Maneuver query", append([]interface{}{"operation", operation}, keysAndValues...)...)
}
