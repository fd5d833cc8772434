package math

import "math"

// Vec2 is a 2D vector on the horizontal (east, north) plane.
type Vec2 struct {
	X, Y float64
}

// Length returns the magnitude.
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Bearing returns the compass bearing of v in degrees, 0 = north, clockwise,
// in [0, 360). The zero vector has bearing 0.
func (v Vec2) Bearing() float64 {
	if v.X == 0 && v.Y == 0 {
		return 0
	}
	deg := math.Atan2(v.X, v.Y) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}
