// Package roadnettest builds small synthetic road networks for tests.
package roadnettest

import (
	"math"

	"github.com/dpup/scenario-geometry/server/internal/lib/geo"
	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
)

// OpenDRIVEHeader wraps a geoReference text in a minimal map description document
func OpenDRIVEHeader(geoReference string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<OpenDRIVE>
  <header revMajor="1" revMinor="4" name="" version="1">
    <geoReference><![CDATA[` + geoReference + `]]></geoReference>
  </header>
</OpenDRIVE>`
}

// Line returns evenly spaced points from a to b, one per meter where possible
func Line(a, b geo.Location) []geo.Location {
	n := int(math.Max(1, math.Round(a.DistanceTo(b))))
	points := make([]geo.Location, n+1)
	for i := 0; i <= n; i++ {
		points[i] = a.Add(b.Sub(a).Scale(float64(i) / float64(n)))
	}
	return points
}

// Arc returns points on a quarter circle around center, sweeping from startDeg to endDeg
func Arc(center geo.Location, radius, startDeg, endDeg float64, segments int) []geo.Location {
	points := make([]geo.Location, segments+1)
	for i := 0; i <= segments; i++ {
		theta := (startDeg + (endDeg-startDeg)*float64(i)/float64(segments)) * math.Pi / 180
		points[i] = geo.Location{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
		}
	}
	return points
}

// StraightRoad is a road along +X with an intersection spanning [junctionStart, junctionEnd)
// meters from the origin. A junctionStart beyond length yields a road without a junction.
func StraightRoad(length, junctionStart, junctionEnd float64) *roadnet.Graph {
	if junctionStart >= length {
		return mustGraph(roadnet.NetworkSpec{
			Name:  "straight",
			Lanes: []roadnet.LaneSpec{{ID: "road", Points: Line(geo.Location{}, geo.Location{X: length})}},
		})
	}
	return mustGraph(roadnet.NetworkSpec{
		Name: "straight-junction",
		Lanes: []roadnet.LaneSpec{
			{ID: "approach", Points: Line(geo.Location{}, geo.Location{X: junctionStart}), Successors: []string{"junction"}},
			{ID: "junction", Points: Line(geo.Location{X: junctionStart}, geo.Location{X: junctionEnd}), Successors: []string{"exit"}, Intersection: true},
			{ID: "exit", Points: Line(geo.Location{X: junctionEnd}, geo.Location{X: length})},
		},
	})
}

// FourWay is a junction centered on the origin approached from the south, heading north.
// The approach lane "south_in" ends at (0,-10) and branches into "left", "straight" and
// "right" junction lanes that lead onto "west_out", "north_out" and "east_out".
func FourWay(geoReference string) *roadnet.Graph {
	return mustGraph(roadnet.NetworkSpec{
		Name:      "four-way",
		OpenDRIVE: OpenDRIVEHeader(geoReference),
		Lanes: []roadnet.LaneSpec{
			{ID: "south_in", Points: Line(geo.Location{Y: -50}, geo.Location{Y: -10}), Successors: []string{"left", "straight", "right"}},
			{ID: "left", Points: Arc(geo.Location{X: -10, Y: -10}, 10, 0, 90, 16), Successors: []string{"west_out"}, Intersection: true},
			{ID: "straight", Points: Line(geo.Location{Y: -10}, geo.Location{Y: 10}), Successors: []string{"north_out"}, Intersection: true},
			{ID: "right", Points: Arc(geo.Location{X: 10, Y: -10}, 10, 180, 90, 16), Successors: []string{"east_out"}, Intersection: true},
			{ID: "west_out", Points: Line(geo.Location{X: -10}, geo.Location{X: -60})},
			{ID: "north_out", Points: Line(geo.Location{Y: 10}, geo.Location{Y: 60})},
			{ID: "east_out", Points: Line(geo.Location{X: 10}, geo.Location{X: 60})},
		},
	})
}

// Crossroads has two perpendicular roads: "eastbound" along y=0 and "northbound" along x=5
func Crossroads() *roadnet.Graph {
	return mustGraph(roadnet.NetworkSpec{
		Name: "crossroads",
		Lanes: []roadnet.LaneSpec{
			{ID: "eastbound", Points: Line(geo.Location{X: -50}, geo.Location{X: 50})},
			{ID: "northbound", Points: Line(geo.Location{X: 5, Y: -50}, geo.Location{X: 5, Y: 50})},
		},
	})
}

// ParallelRoads has two eastbound roads four meters apart
func ParallelRoads() *roadnet.Graph {
	return mustGraph(roadnet.NetworkSpec{
		Name: "parallel",
		Lanes: []roadnet.LaneSpec{
			{ID: "inner", Points: Line(geo.Location{X: -50}, geo.Location{X: 50})},
			{ID: "outer", Points: Line(geo.Location{X: -50, Y: 4}, geo.Location{X: 50, Y: 4})},
		},
	})
}

func mustGraph(spec roadnet.NetworkSpec) *roadnet.Graph {
	g, err := roadnet.NewGraph(spec)
	if err != nil {
		panic(err)
	}
	return g
}
