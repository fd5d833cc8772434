package shadow

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/wallshadow/pkg/math"
)

// Input holds the parameters of one shadow computation.
type Input struct {
	ElevationDeg float64 `json:"elevation_deg"`
	AzimuthDeg   float64 `json:"azimuth_deg"`
	SlopeDeg     float64 `json:"slope_deg"`
	AspectDeg    float64 `json:"aspect_deg"`
	WallHeightM  float64 `json:"wall_height_m"`
}

// Result is a successful (or, with DegenerateShadow, diagnostic) shadow.
type Result struct {
	Input Input `json:"input"`

	Sun    math.Vec3 `json:"sun"`
	Normal math.Vec3 `json:"normal"`
	T      float64   `json:"t"`

	// Point is where the ray through the wall top meets the terrain.
	Point math.Vec3 `json:"point"`

	// HorizontalDistance is |(Point.X, Point.Y)| in metres.
	HorizontalDistance float64 `json:"horizontal_distance_m"`

	// Bearing is the compass direction from the wall base to Point.
	Bearing float64 `json:"bearing_deg"`
}

// Compute validates the input and projects the wall's shadow.
//
// Checks run in order: wall height, angle domains, sun below horizon, then
// the geometry. On DegenerateShadow the returned Result still holds the raw
// point; every other error returns a zero Result.
func Compute(in Input) (Result, error) {
	if !(in.WallHeightM > 0) || gomath.IsInf(in.WallHeightM, 0) {
		return Result{}, &Error{Kind: InvalidHeight, Input: in, Field: "height", Value: in.WallHeightM}
	}
	if err := ValidateAngles(in); err != nil {
		return Result{}, err
	}
	if in.ElevationDeg < 0 {
		return Result{}, &Error{Kind: SunBelowHorizon, Input: in}
	}

	sun := SunDirection(in.ElevationDeg, in.AzimuthDeg)
	normal := TerrainNormal(in.SlopeDeg, in.AspectDeg)

	p, err := Project(sun, normal, in.WallHeightM)
	if err != nil {
		var se *Error
		if !errors.As(err, &se) {
			return Result{}, err
		}
		se.Input = in
		if se.Kind != DegenerateShadow {
			return Result{}, se
		}
	}

	res := Result{
		Input:              in,
		Sun:                sun,
		Normal:             normal,
		T:                  p.T,
		Point:              p.Point,
		HorizontalDistance: p.HorizontalDistance(),
		Bearing:            p.Point.XY().Bearing(),
	}
	return res, err
}

// Summary formats the shadow point and length the way the calculator prints them.
func (r Result) Summary() string {
	return fmt.Sprintf("Shadow point on terrain: X = %.2f m, Y = %.2f m, Z = %.2f m\nHorizontal shadow length: %.2f m (bearing %.1f°)",
		r.Point.X, r.Point.Y, r.Point.Z, r.HorizontalDistance, r.Bearing)
}
