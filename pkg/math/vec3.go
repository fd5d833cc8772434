// Package math provides the small vector and ray types used by the shadow geometry.
package math

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3D vector. X points east, Y north and Z up.
type Vec3 struct {
	X, Y, Z float64
}

// FromR3 converts a gonum vector.
func FromR3(v r3.Vec) Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// R3 returns v as a gonum vector.
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return FromR3(r3.Add(v.R3(), other.R3()))
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return FromR3(r3.Sub(v.R3(), other.R3()))
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return FromR3(r3.Scale(s, v.R3()))
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(v.R3(), other.R3())
}

// Length returns the magnitude.
func (v Vec3) Length() float64 {
	return r3.Norm(v.R3())
}

// XY returns the horizontal components as Vec2.
func (v Vec3) XY() Vec2 {
	return Vec2{v.X, v.Y}
}
