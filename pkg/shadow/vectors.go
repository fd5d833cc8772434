// Package shadow projects the shadow of a vertical wall onto inclined terrain.
//
// Coordinates are local: X east, Y north, Z up, with the wall base at the
// origin. Bearings are compass bearings in degrees, 0 = north, clockwise.
package shadow

import (
	gomath "math"

	"github.com/Faultbox/wallshadow/pkg/math"
)

const deg2rad = gomath.Pi / 180

// SunDirection converts solar elevation and azimuth to a vector pointing
// towards the sun. The result is unit length by construction; below-horizon
// elevations still produce a vector.
func SunDirection(elevationDeg, azimuthDeg float64) math.Vec3 {
	el := elevationDeg * deg2rad
	az := azimuthDeg * deg2rad
	return math.Vec3{
		X: gomath.Cos(el) * gomath.Sin(az),
		Y: gomath.Cos(el) * gomath.Cos(az),
		Z: gomath.Sin(el),
	}
}

// TerrainNormal returns the unit normal of ground tilted by slopeDeg towards
// the bearing aspectDeg. A zero slope gives (0, 0, 1).
func TerrainNormal(slopeDeg, aspectDeg float64) math.Vec3 {
	sl := slopeDeg * deg2rad
	as := aspectDeg * deg2rad
	return math.Vec3{
		X: gomath.Sin(sl) * gomath.Sin(as),
		Y: gomath.Sin(sl) * gomath.Cos(as),
		Z: gomath.Cos(sl),
	}
}

// NormalizeBearing wraps any finite bearing into [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = gomath.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// Mod of a tiny negative can round up to exactly 360.
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// ValidateAngles checks every angle against its domain: elevation in
// [-90, 90], azimuth and aspect in [0, 360), slope in [0, 90). Out-of-range
// values are rejected, not wrapped.
func ValidateAngles(in Input) error {
	checks := []struct {
		field  string
		value  float64
		lo, hi float64
		openHi bool
	}{
		{"elevation", in.ElevationDeg, -90, 90, false},
		{"azimuth", in.AzimuthDeg, 0, 360, true},
		{"slope", in.SlopeDeg, 0, 90, true},
		{"aspect", in.AspectDeg, 0, 360, true},
	}
	for _, c := range checks {
		v := c.value
		bad := gomath.IsNaN(v) || gomath.IsInf(v, 0) || v < c.lo || v > c.hi || (c.openHi && v == c.hi)
		if bad {
			return &Error{Kind: InvalidAngle, Input: in, Field: c.field, Value: v}
		}
	}
	return nil
}
