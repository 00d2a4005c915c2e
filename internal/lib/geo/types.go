package geo

// Location is a position in the simulation's planar world frame, in meters
type Location struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Rotation is an orientation in degrees
type Rotation struct {
	Pitch float64 `json:"pitch" yaml:"pitch"`
	Yaw   float64 `json:"yaw" yaml:"yaw"`
	Roll  float64 `json:"roll" yaml:"roll"`
}

// Transform is a Location plus an orientation
type Transform struct {
	Location Location `json:"location" yaml:"location"`
	Rotation Rotation `json:"rotation" yaml:"rotation"`
}

// GeoCoordinate is a projected geographic position (degrees, degrees, meters)
type GeoCoordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Altitude  float64 `json:"alt"`
}

// GeoReference anchors the projection of one map's local frame.
// It is read once per map and must not change while the map is loaded.
type GeoReference struct {
	Latitude  float64 `json:"lat_ref"`
	Longitude float64 `json:"lon_ref"`
}

// DefaultGeoReference is used when a map declares no reference of its own
var DefaultGeoReference = GeoReference{Latitude: 42.0, Longitude: 2.0}

// Point represents a geographic coordinate
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Polyline represents an encoded polyline with optional decoded points
type Polyline struct {
	EncodedPolyline string  `json:"encoded_polyline"`
	Points          []Point `json:"points"`
}

// GeoUtils interface defines geographic calculation utilities
type GeoUtils interface {
	// Calculate great-circle distance between two points in meters
	PointToPoint(p1, p2 Point) (float64, error)

	// Calculate minimum distance from point to polyline in meters
	PointToPolyline(point Point, polyline Polyline) (float64, error)

	// Calculate the great-circle length of a polyline in meters
	PolylineLength(polyline Polyline) (float64, error)

	// Encode point sequence as a Google polyline string
	EncodePolyline(points []Point) string

	// Decode Google polyline string to point sequence
	DecodePolyline(encoded string) ([]Point, error)
}

// NewGeoUtils is implemented in geo.go
