package roadnet_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet/roadnettest"
)

type laneIdentifier interface {
	LaneID() string
}

func laneOf(t *testing.T, wp roadnet.Waypoint) string {
	t.Helper()
	id, ok := wp.(laneIdentifier)
	require.True(t, ok, "waypoint does not expose its lane")
	return id.LaneID()
}

func TestGraph_WaypointAtSnapsToNearestLane(t *testing.T) {
	g := roadnettest.Crossroads()

	wp, err := g.WaypointAt(geo.Location{X: -20, Y: 1.5})
	require.NoError(t, err)
	assert.Equal(t, "eastbound", laneOf(t, wp))
	assert.InDelta(t, -20, wp.Transform().Location.X, 1e-9)
	assert.InDelta(t, 0, wp.Transform().Location.Y, 1e-9)
	assert.InDelta(t, 0, wp.Transform().Rotation.Yaw, 1e-9)

	wp, err = g.WaypointAt(geo.Location{X: 6, Y: 30})
	require.NoError(t, err)
	assert.Equal(t, "northbound", laneOf(t, wp))
	assert.InDelta(t, 90, wp.Transform().Rotation.Yaw, 1e-9)
}

func TestGraph_NextFollowsLane(t *testing.T) {
	g := roadnettest.StraightRoad(20, 100, 100)

	start, err := g.WaypointAt(geo.Location{X: 2})
	require.NoError(t, err)

	next, err := start.Next(3.5)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.InDelta(t, 5.5, next[0].Transform().Location.X, 1e-9)
	assert.False(t, next[0].IsIntersection())

	// Past the end of a lane without successors
	next, err = start.Next(50)
	require.NoError(t, err)
	assert.Empty(t, next)

	_, err = start.Next(0)
	assert.ErrorIs(t, err, roadnet.ErrInvalidInput)
}

func TestGraph_NextCrossesIntoSuccessor(t *testing.T) {
	g := roadnettest.StraightRoad(30, 3.5, 12)

	start, err := g.WaypointAt(geo.Location{X: 3})
	require.NoError(t, err)
	assert.False(t, start.IsIntersection())

	next, err := start.Next(1)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.True(t, next[0].IsIntersection())
	assert.Equal(t, "junction", laneOf(t, next[0]))
	assert.InDelta(t, 4, next[0].Transform().Location.X, 1e-9)
}

func TestGraph_NextBranchesAtJunction(t *testing.T) {
	g := roadnettest.FourWay("")

	start, err := g.LaneWaypoint("south_in", 39.5)
	require.NoError(t, err)

	next, err := start.Next(1)
	require.NoError(t, err)
	require.Len(t, next, 3)

	var lanes []string
	for _, wp := range next {
		lanes = append(lanes, laneOf(t, wp))
		assert.True(t, wp.IsIntersection())
	}
	assert.Equal(t, []string{"left", "straight", "right"}, lanes)
}

func TestNewGraph_Validation(t *testing.T) {
	_, err := roadnet.NewGraph(roadnet.NetworkSpec{})
	assert.Error(t, err)

	_, err = roadnet.NewGraph(roadnet.NetworkSpec{Lanes: []roadnet.LaneSpec{
		{ID: "a", Points: []geo.Location{{X: 0}}},
	}})
	assert.ErrorContains(t, err, "at least 2 points")

	_, err = roadnet.NewGraph(roadnet.NetworkSpec{Lanes: []roadnet.LaneSpec{
		{ID: "a", Points: []geo.Location{{X: 0}, {X: 1}}, Successors: []string{"missing"}},
	}})
	assert.ErrorContains(t, err, "unknown successor")

	_, err = roadnet.NewGraph(roadnet.NetworkSpec{Lanes: []roadnet.LaneSpec{
		{ID: "a", Points: []geo.Location{{X: 0}, {X: 1}}},
		{ID: "a", Points: []geo.Location{{X: 0}, {X: 1}}},
	}})
	assert.ErrorContains(t, err, "duplicate lane")
}

func TestLoadGraph(t *testing.T) {
	doc := `
name: demo
opendrive: "<OpenDRIVE><header><geoReference>+lat_0=49.0 +lon_0=8.0</geoReference></header></OpenDRIVE>"
lanes:
  - id: a
    successors: [b]
    points:
      - {x: 0, y: 0, z: 0}
      - {x: 10, y: 0, z: 0}
  - id: b
    intersection: true
    points:
      - {x: 10, y: 0}
      - {x: 20, y: 0}
`
	g, err := roadnet.LoadGraph(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "demo", g.Name())

	header, err := g.OpenDRIVE()
	require.NoError(t, err)
	assert.Contains(t, header, "lat_0=49.0")

	wp, err := g.LaneWaypoint("a", 8)
	require.NoError(t, err)
	next, err := wp.Next(4)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.True(t, next[0].IsIntersection())

	_, err = roadnet.LoadGraph(strings.NewReader("lanes: [oops"))
	assert.Error(t, err)
}

func TestRouteOption_String(t *testing.T) {
	assert.Equal(t, "LANEFOLLOW", roadnet.LaneFollow.String())
	assert.Equal(t, "LEFT", roadnet.Left.String())
	assert.Equal(t, "VOID", roadnet.RouteOption(42).String())
}
