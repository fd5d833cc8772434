package math

import gomath "math"

// ParallelEpsilon is the smallest |direction·normal| treated as a real crossing.
const ParallelEpsilon = 1e-9

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectPlane intersects the ray with the plane through point with the
// given normal. It returns the ray parameter t, which may be negative when the
// plane lies behind the origin. ok is false when the ray runs parallel to the
// plane.
func (r Ray) IntersectPlane(point, normal Vec3) (t float64, ok bool) {
	// Ray:   P = Origin + t * Direction
	// Plane: (P - point) . normal = 0
	denom := r.Direction.Dot(normal)
	if gomath.Abs(denom) < ParallelEpsilon {
		return 0, false
	}
	t = point.Sub(r.Origin).Dot(normal) / denom
	return t, true
}
