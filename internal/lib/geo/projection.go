package geo

import "math"

// EarthRadiusEquatorial is the equatorial Earth radius used by the map projection (meters)
const EarthRadiusEquatorial = 6378137.0

// Project converts a world-frame location into a geographic coordinate using a
// spherical Mercator projection anchored at ref. Altitude is passed through from Z.
//
// The reference latitude must lie strictly between -90 and 90 degrees. At the
// poles the projection scale is zero and the result is undefined (division by zero);
// callers are expected to guarantee a valid reference.
func Project(ref GeoReference, loc Location) GeoCoordinate {
	scale := math.Cos(ref.Latitude * math.Pi / 180.0)

	// Mercator origin of the reference point
	mx := scale * ref.Longitude * math.Pi * EarthRadiusEquatorial / 180.0
	my := scale * EarthRadiusEquatorial * math.Log(math.Tan((90.0+ref.Latitude)*math.Pi/360.0))

	mx += loc.X
	my += loc.Y

	lon := mx * 180.0 / (math.Pi * EarthRadiusEquatorial * scale)
	lat := 360.0*math.Atan(math.Exp(my/(EarthRadiusEquatorial*scale)))/math.Pi - 90.0

	return GeoCoordinate{
		Latitude:  lat,
		Longitude: lon,
		Altitude:  loc.Z,
	}
}

// Point drops the altitude of a GeoCoordinate
func (c GeoCoordinate) Point() Point {
	return Point{Latitude: c.Latitude, Longitude: c.Longitude}
}
