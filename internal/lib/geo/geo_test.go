package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_OriginRecoversReference(t *testing.T) {
	refs := []GeoReference{
		DefaultGeoReference,
		{Latitude: 49.0, Longitude: 8.0},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 0, Longitude: 0},
	}

	for _, ref := range refs {
		coord := Project(ref, Location{X: 0, Y: 0, Z: 12.5})
		assert.InDelta(t, ref.Latitude, coord.Latitude, 1e-6, "latitude for ref %+v", ref)
		assert.InDelta(t, ref.Longitude, coord.Longitude, 1e-6, "longitude for ref %+v", ref)
		assert.Equal(t, 12.5, coord.Altitude, "altitude is passed through")
	}
}

func TestProject_Deterministic(t *testing.T) {
	loc := Location{X: 123.4, Y: -56.7, Z: 0.3}
	first := Project(DefaultGeoReference, loc)
	second := Project(DefaultGeoReference, loc)
	assert.Equal(t, first, second)
}

func TestProject_EastwardOffset(t *testing.T) {
	ref := DefaultGeoReference
	coord := Project(ref, Location{X: 1000})

	// One kilometer along X only moves longitude
	expectedDelta := 1000 * 180 / (math.Pi * EarthRadiusEquatorial * math.Cos(ref.Latitude*math.Pi/180))
	assert.InDelta(t, ref.Longitude+expectedDelta, coord.Longitude, 1e-9)
	assert.InDelta(t, ref.Latitude, coord.Latitude, 1e-9)
}

func TestProject_NorthwardOffsetIncreasesLatitude(t *testing.T) {
	coord := Project(DefaultGeoReference, Location{Y: 500})
	assert.Greater(t, coord.Latitude, DefaultGeoReference.Latitude)
	assert.InDelta(t, DefaultGeoReference.Longitude, coord.Longitude, 1e-9)
}

func TestLocation_VectorOps(t *testing.T) {
	a := Location{X: 1, Y: 2, Z: 3}
	b := Location{X: 4, Y: 6, Z: 3}

	assert.Equal(t, Location{X: 3, Y: 4}, b.Sub(a))
	assert.Equal(t, 5.0, a.DistanceTo(b))
	assert.Equal(t, Location{X: 5, Y: 8, Z: 6}, a.Add(b))
	assert.Equal(t, 1.0*6-2.0*4, a.Cross2D(b))
	assert.Equal(t, Location{X: 1, Y: 2}, a.Flat())

	forward := Rotation{Yaw: 90}.ForwardVector()
	assert.InDelta(t, 0, forward.X, 1e-12)
	assert.InDelta(t, 1, forward.Y, 1e-12)
}

func TestAngleBetween(t *testing.T) {
	assert.InDelta(t, 0, AngleBetween(Location{X: 1}, Location{X: 2}), 1e-12)
	assert.InDelta(t, math.Pi/2, AngleBetween(Location{X: 1}, Location{Y: 3}), 1e-12)
	assert.InDelta(t, math.Pi, AngleBetween(Location{X: 1}, Location{X: -1}), 1e-12)

	// Rounding on nearly parallel vectors must not yield NaN
	angle := AngleBetween(Location{X: 0.1, Y: 0.2}, Location{X: 0.1 * 3, Y: 0.2 * 3})
	assert.False(t, math.IsNaN(angle))
	assert.InDelta(t, 0, angle, 1e-12)

	// Small angles near the junction exit threshold stay accurate
	small := AngleBetween(Location{X: 1}, Location{X: math.Cos(0.001), Y: math.Sin(0.001)})
	assert.InDelta(t, 0.001, small, 1e-15)

	assert.Equal(t, 0.0, AngleBetween(Location{}, Location{X: 1}))
}

func TestLocation_Vector(t *testing.T) {
	l := Location{X: 1.5, Y: -2, Z: 3}
	v := l.Vector()
	assert.Equal(t, 1.5, v.X)
	assert.Equal(t, -2.0, v.Y)
	assert.Equal(t, 3.0, v.Z)
	assert.Equal(t, l, FromVector(v))
	assert.Equal(t, Location{X: 3, Y: -4, Z: 6}, l.Scale(2))
	assert.Equal(t, 1.5*1.5+4+9, l.Dot(l))
}

func TestGeoUtils_PointToPoint(t *testing.T) {
	// Highway 4 test coordinates: Angels Camp to Murphys (real route)
	angelscamp := Point{Latitude: 38.0675, Longitude: -120.5436}
	murphys := Point{Latitude: 38.1391, Longitude: -120.4561}

	geoUtils := NewGeoUtils()

	distance, err := geoUtils.PointToPoint(angelscamp, murphys)
	require.NoError(t, err)
	assert.InDelta(t, 11046, distance, 100, "Distance should be approximately 11.0km")

	invalidPoint := Point{Latitude: 200, Longitude: -300}
	_, err = geoUtils.PointToPoint(angelscamp, invalidPoint)
	assert.Error(t, err, "Should return error for invalid coordinates")
}

func TestGeoUtils_PointToPolyline(t *testing.T) {
	geoUtils := NewGeoUtils()

	// Route projected from a straight 200m lane along X
	route := Polyline{Points: []Point{
		Project(DefaultGeoReference, Location{X: 0}).Point(),
		Project(DefaultGeoReference, Location{X: 100}).Point(),
		Project(DefaultGeoReference, Location{X: 200}).Point(),
	}}

	onRoute := Project(DefaultGeoReference, Location{X: 50}).Point()
	distance, err := geoUtils.PointToPolyline(onRoute, route)
	require.NoError(t, err)
	assert.Less(t, distance, 1.0)

	offset := Project(DefaultGeoReference, Location{X: 50, Y: 30}).Point()
	distance, err = geoUtils.PointToPolyline(offset, route)
	require.NoError(t, err)
	assert.InDelta(t, 30, distance, 3)

	beyond := Project(DefaultGeoReference, Location{X: 260}).Point()
	distance, err = geoUtils.PointToPolyline(beyond, route)
	require.NoError(t, err)
	assert.InDelta(t, 60, distance, 5)

	_, err = geoUtils.PointToPolyline(onRoute, Polyline{})
	assert.Error(t, err)
}

func TestGeoUtils_PolylineLength(t *testing.T) {
	geoUtils := NewGeoUtils()

	route := Polyline{Points: []Point{
		Project(DefaultGeoReference, Location{X: 0}).Point(),
		Project(DefaultGeoReference, Location{X: 300}).Point(),
		Project(DefaultGeoReference, Location{X: 300, Y: 400}).Point(),
	}}

	length, err := geoUtils.PolylineLength(route)
	require.NoError(t, err)
	// Projection preserves ground distance near the reference point
	assert.InDelta(t, 700, length, 5)

	length, err = geoUtils.PolylineLength(Polyline{})
	require.NoError(t, err)
	assert.Zero(t, length)
}

func TestGeoUtils_EncodeDecodePolyline(t *testing.T) {
	geoUtils := NewGeoUtils()

	points := []Point{
		{Latitude: 38.5, Longitude: -120.2},
		{Latitude: 40.7, Longitude: -120.95},
		{Latitude: 43.252, Longitude: -126.453},
	}

	encoded := geoUtils.EncodePolyline(points)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encoded)

	decoded, err := geoUtils.DecodePolyline(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	for i := range points {
		assert.InDelta(t, points[i].Latitude, decoded[i].Latitude, 1e-5)
		assert.InDelta(t, points[i].Longitude, decoded[i].Longitude, 1e-5)
	}

	_, err = geoUtils.DecodePolyline("")
	assert.Error(t, err)
}
