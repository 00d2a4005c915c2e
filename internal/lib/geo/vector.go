package geo

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vector returns the location as an r3 vector.
func (l Location) Vector() r3.Vector {
	return r3.Vector{X: l.X, Y: l.Y, Z: l.Z}
}

// FromVector converts an r3 vector back into a Location.
func FromVector(v r3.Vector) Location {
	return Location{X: v.X, Y: v.Y, Z: v.Z}
}

// Add returns l + other.
func (l Location) Add(other Location) Location {
	return FromVector(l.Vector().Add(other.Vector()))
}

// Sub returns l - other.
func (l Location) Sub(other Location) Location {
	return FromVector(l.Vector().Sub(other.Vector()))
}

// Scale multiplies every component by s.
func (l Location) Scale(s float64) Location {
	return FromVector(l.Vector().Mul(s))
}

// Dot returns the dot product of two vectors.
func (l Location) Dot(other Location) float64 {
	return l.Vector().Dot(other.Vector())
}

// Norm returns the Euclidean norm of the vector.
func (l Location) Norm() float64 {
	return l.Vector().Norm()
}

// DistanceTo returns the straight-line distance between two points.
func (l Location) DistanceTo(other Location) float64 {
	return l.Vector().Distance(other.Vector())
}

// Cross2D returns the z component of the cross product of l and other,
// ignoring their z components.
func (l Location) Cross2D(other Location) float64 {
	return l.Flat().Vector().Cross(other.Flat().Vector()).Z
}

// Flat returns the location with Z set to zero.
func (l Location) Flat() Location {
	return Location{X: l.X, Y: l.Y}
}

// ForwardVector returns the unit vector of the yaw heading in the ground plane.
func (r Rotation) ForwardVector() Location {
	yaw := r.Yaw * math.Pi / 180.0
	return Location{X: math.Cos(yaw), Y: math.Sin(yaw)}
}

// AngleBetween returns the angle in radians between two vectors, in [0, pi].
// A zero-length input yields 0.
func AngleBetween(a, b Location) float64 {
	return float64(a.Vector().Angle(b.Vector()))
}
