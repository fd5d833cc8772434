package shadow

import (
	"errors"
	"fmt"

	"github.com/Faultbox/wallshadow/pkg/math"
)

// Kind identifies why a shadow could not be computed.
type Kind int

// Failure kinds. The zero value means no failure.
const (
	InvalidAngle Kind = iota + 1
	InvalidHeight
	SunBelowHorizon
	NoIntersection
	DegenerateShadow
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	ErrInvalidAngle     = errors.New("invalid angle")
	ErrInvalidHeight    = errors.New("invalid wall height")
	ErrSunBelowHorizon  = errors.New("sun below horizon")
	ErrNoIntersection   = errors.New("no intersection with terrain")
	ErrDegenerateShadow = errors.New("degenerate shadow")
)

var kindNames = map[Kind]string{
	InvalidAngle:     "invalid_angle",
	InvalidHeight:    "invalid_height",
	SunBelowHorizon:  "sun_below_horizon",
	NoIntersection:   "no_intersection",
	DegenerateShadow: "degenerate_shadow",
}

// String returns the snake_case name used in logs, metrics and JSON.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Message returns the user-facing explanation for the kind.
func (k Kind) Message() string {
	switch k {
	case InvalidAngle:
		return "An angle is outside its accepted range."
	case InvalidHeight:
		return "The wall height must be greater than zero."
	case SunBelowHorizon:
		return "The sun has not risen at this time and place, so the wall casts no shadow."
	case NoIntersection:
		return "The sun's rays run parallel to the terrain, so the shadow never reaches the ground."
	case DegenerateShadow:
		return "The sun is behind the slope: the computed shadow point falls behind the wall and is not a real shadow."
	default:
		return "Unknown shadow error."
	}
}

// IsWarning reports whether a result of this kind still carries a point.
func (k Kind) IsWarning() bool {
	return k == DegenerateShadow
}

func (k Kind) sentinel() error {
	switch k {
	case InvalidAngle:
		return ErrInvalidAngle
	case InvalidHeight:
		return ErrInvalidHeight
	case SunBelowHorizon:
		return ErrSunBelowHorizon
	case NoIntersection:
		return ErrNoIntersection
	case DegenerateShadow:
		return ErrDegenerateShadow
	}
	return nil
}

// Error describes a failed shadow computation together with the inputs that
// produced it.
type Error struct {
	Kind  Kind
	Input Input

	// Field and Value name the rejected input for InvalidAngle and InvalidHeight.
	Field string
	Value float64

	// T is the ray parameter when the projector got far enough to compute it.
	T    float64
	HasT bool

	// Point is the raw intersection for DegenerateShadow.
	Point *math.Vec3
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidAngle, InvalidHeight:
		return fmt.Sprintf("%s: %s = %g", e.Kind.sentinel(), e.Field, e.Value)
	case SunBelowHorizon:
		return fmt.Sprintf("%s: elevation %.2f°", e.Kind.sentinel(), e.Input.ElevationDeg)
	case NoIntersection, DegenerateShadow:
		msg := fmt.Sprintf("%s: elevation %.2f° azimuth %.2f° slope %.2f° aspect %.2f° height %.2fm",
			e.Kind.sentinel(), e.Input.ElevationDeg, e.Input.AzimuthDeg,
			e.Input.SlopeDeg, e.Input.AspectDeg, e.Input.WallHeightM)
		if e.HasT {
			msg += fmt.Sprintf(" t=%g", e.T)
		}
		return msg
	default:
		return e.Kind.String()
	}
}

// Unwrap exposes the kind's sentinel to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// KindOf returns the Kind carried by err, or 0 if err is not a shadow error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
