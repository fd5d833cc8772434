package shadow

import (
	gomath "math"

	"github.com/Faultbox/wallshadow/pkg/math"
)

// Projection is the raw outcome of a ray/plane intersection.
type Projection struct {
	T     float64
	Point math.Vec3
}

// HorizontalDistance is the length of the point's (x, y) projection.
func (p Projection) HorizontalDistance() float64 {
	return p.Point.XY().Length()
}

// Project traces the sun ray through the top of a wall of the given height
// down onto the plane through the origin with normal n.
//
// The ray is P(t) = P0 - t*S with P0 = (0, 0, h), so t = (n·P0)/(n·S).
// A ray parallel to the plane returns NoIntersection. When t <= 0 the
// Projection is still filled in and the error is DegenerateShadow.
func Project(sun, normal math.Vec3, wallHeightM float64) (Projection, error) {
	if !(wallHeightM > 0) || gomath.IsInf(wallHeightM, 0) {
		return Projection{}, &Error{Kind: InvalidHeight, Field: "height", Value: wallHeightM}
	}

	top := math.Vec3{Z: wallHeightM}
	ray := math.Ray{Origin: top, Direction: sun.Scale(-1)}

	t, ok := ray.IntersectPlane(math.Vec3{}, normal)
	if !ok {
		return Projection{}, &Error{Kind: NoIntersection}
	}

	p := Projection{T: t, Point: ray.At(t)}
	if t <= 0 {
		pt := p.Point
		return p, &Error{Kind: DegenerateShadow, T: t, HasT: true, Point: &pt}
	}
	return p, nil
}
