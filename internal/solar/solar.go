// Package solar computes the sun's apparent position for a place and time.
package solar

import (
	gomath "math"
	"time"

	"github.com/paulmach/orb"
	"github.com/sixdouglas/suncalc"

	"github.com/Faultbox/wallshadow/pkg/math"
	"github.com/Faultbox/wallshadow/pkg/shadow"
)

// Position is the sun in horizontal coordinates.
type Position struct {
	Time time.Time `json:"time"`

	// ElevationDeg ranges from -90 to 90; 0 is the horizon.
	ElevationDeg float64 `json:"elevation_deg"`

	// AzimuthDeg is a compass bearing in [0, 360), 0 = north, 90 = east.
	AzimuthDeg float64 `json:"azimuth_deg"`
}

// Risen reports whether the sun is above the horizon.
func (p Position) Risen() bool {
	return p.ElevationDeg >= 0
}

// Ray returns the unit vector pointing towards the sun.
func (p Position) Ray() math.Vec3 {
	return shadow.SunDirection(p.ElevationDeg, p.AzimuthDeg)
}

// Calculator wraps suncalc. The zero value is ready to use.
type Calculator struct{}

// At returns the sun's position at t as seen from point.
func (Calculator) At(point orb.Point, t time.Time) Position {
	p := suncalc.GetPosition(t, point.Lat(), point.Lon())

	// suncalc returns radians, with azimuth measured from south and
	// positive towards west.
	const rad2deg = 180 / gomath.Pi
	return Position{
		Time:         t,
		ElevationDeg: p.Altitude * rad2deg,
		AzimuthDeg:   shadow.NormalizeBearing(p.Azimuth*rad2deg + 180),
	}
}
