// Package calculator resolves a place and local time into solar angles and
// projects the wall shadow for them.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Faultbox/wallshadow/internal/geocode"
	"github.com/Faultbox/wallshadow/internal/observability"
	"github.com/Faultbox/wallshadow/internal/solar"
	"github.com/Faultbox/wallshadow/pkg/shadow"
)

const tracerName = "github.com/Faultbox/wallshadow/internal/calculator"

// ErrBadTime is returned when the local time does not match the layout.
var ErrBadTime = errors.New("invalid local time")

// Pipeline stages, used for metrics labels and error context.
const (
	StageGeocode  = "geocode"
	StageTimezone = "timezone"
	StageTime     = "time"
)

// Geocoder resolves a place name.
type Geocoder interface {
	Lookup(ctx context.Context, name string) (geocode.Place, error)
}

// ZoneResolver finds the time zone of a point.
type ZoneResolver interface {
	Location(p orb.Point) (*time.Location, error)
}

// SunLocator gives the sun's position.
type SunLocator interface {
	At(p orb.Point, t time.Time) solar.Position
}

// Request is one place/time shadow query.
type Request struct {
	Place       string
	LocalTime   string
	WallHeightM float64
	SlopeDeg    float64
	AspectDeg   float64
}

// Report carries everything resolved for a Request. It is filled up to the
// stage that failed, so callers can still show the sun position when the
// shadow itself cannot be computed.
type Report struct {
	Place    geocode.Place  `json:"place"`
	Timezone string         `json:"timezone"`
	Time     time.Time      `json:"time"`
	Sun      solar.Position `json:"sun"`
	Result   shadow.Result  `json:"result"`
	Warning  string         `json:"warning,omitempty"`
}

// Summary renders the report as the calculator's text output.
func (r Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%.4f, %.4f) %s\n", r.Place.DisplayName, r.Place.Lat(), r.Place.Lon(), r.Time.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Sun at %.2f° elevation and %.2f° azimuth\n", r.Sun.ElevationDeg, r.Sun.AzimuthDeg)
	b.WriteString(r.Result.Summary())
	if r.Warning != "" {
		b.WriteString("\nWarning: ")
		b.WriteString(r.Warning)
	}
	return b.String()
}

// Calculator wires the lookups to shadow.Compute.
type Calculator struct {
	geo     Geocoder
	zones   ZoneResolver
	sun     SunLocator
	layout  string
	metrics *observability.Collector
	log     *zap.Logger
	tracer  trace.Tracer
}

// New builds a Calculator. metrics and log may be nil.
func New(geo Geocoder, zones ZoneResolver, sun SunLocator, layout string, metrics *observability.Collector, log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{
		geo:     geo,
		zones:   zones,
		sun:     sun,
		layout:  layout,
		metrics: metrics,
		log:     log,
		tracer:  otel.Tracer(tracerName),
	}
}

// Compute runs the full pipeline for req.
//
// Errors from shadow.Compute are returned unchanged so callers can switch on
// shadow.KindOf. For DegenerateShadow the Report also holds the raw point and
// a Warning.
func (c *Calculator) Compute(ctx context.Context, req Request) (Report, error) {
	ctx, span := c.tracer.Start(ctx, "calculator.Compute",
		trace.WithAttributes(attribute.String("place", req.Place), attribute.String("local_time", req.LocalTime)))
	defer span.End()

	var rep Report

	place, err := c.geocode(ctx, req.Place)
	if err != nil {
		return rep, c.fail(span, StageGeocode, err)
	}
	rep.Place = place

	loc, err := c.zones.Location(place.Point)
	if err != nil {
		return rep, c.fail(span, StageTimezone, fmt.Errorf("timezone for %s: %w", req.Place, err))
	}
	rep.Timezone = loc.String()

	when, err := time.ParseInLocation(c.layout, strings.TrimSpace(req.LocalTime), loc)
	if err != nil {
		return rep, c.fail(span, StageTime, fmt.Errorf("%w: %q does not match %q: %v", ErrBadTime, req.LocalTime, c.layout, err))
	}
	rep.Time = when

	rep.Sun = c.sun.At(place.Point, when)
	span.SetAttributes(
		attribute.Float64("sun.elevation_deg", rep.Sun.ElevationDeg),
		attribute.Float64("sun.azimuth_deg", rep.Sun.AzimuthDeg),
	)
	c.log.Debug("resolved sun position",
		zap.String("place", place.DisplayName),
		zap.String("timezone", rep.Timezone),
		zap.Time("time", when),
		zap.Float64("elevation_deg", rep.Sun.ElevationDeg),
		zap.Float64("azimuth_deg", rep.Sun.AzimuthDeg),
	)

	res, err := c.project(ctx, shadow.Input{
		ElevationDeg: rep.Sun.ElevationDeg,
		AzimuthDeg:   rep.Sun.AzimuthDeg,
		SlopeDeg:     req.SlopeDeg,
		AspectDeg:    req.AspectDeg,
		WallHeightM:  req.WallHeightM,
	})
	if err != nil {
		span.RecordError(err)
		if kind := shadow.KindOf(err); kind.IsWarning() {
			rep.Result = res
			rep.Warning = kind.Message()
			c.log.Warn("degenerate shadow", zap.Error(err), zap.Float64("t", res.T))
		} else {
			c.log.Info("no shadow", zap.String("kind", kind.String()), zap.Error(err))
		}
		return rep, err
	}
	rep.Result = res

	c.log.Debug("shadow computed",
		zap.Float64("x", res.Point.X),
		zap.Float64("y", res.Point.Y),
		zap.Float64("z", res.Point.Z),
		zap.Float64("distance_m", res.HorizontalDistance),
	)
	return rep, nil
}

// Project runs the core computation alone, counting its outcome.
func (c *Calculator) Project(ctx context.Context, in shadow.Input) (shadow.Result, error) {
	ctx, span := c.tracer.Start(ctx, "calculator.Project")
	defer span.End()
	res, err := c.project(ctx, in)
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}

func (c *Calculator) project(ctx context.Context, in shadow.Input) (shadow.Result, error) {
	_, span := c.tracer.Start(ctx, "shadow.Compute")
	defer span.End()

	res, err := shadow.Compute(in)
	c.metrics.ObserveComputation(err)
	span.SetAttributes(attribute.String("outcome", observability.OutcomeLabel(err)))
	if err == nil {
		span.SetAttributes(attribute.Float64("horizontal_distance_m", res.HorizontalDistance))
	}
	return res, err
}

func (c *Calculator) geocode(ctx context.Context, name string) (geocode.Place, error) {
	ctx, span := c.tracer.Start(ctx, "geocode.Lookup")
	defer span.End()
	p, err := c.geo.Lookup(ctx, name)
	if err != nil {
		span.RecordError(err)
	}
	return p, err
}

func (c *Calculator) fail(span trace.Span, stage string, err error) error {
	c.metrics.ObserveLookupFailure(stage)
	span.RecordError(err)
	span.SetStatus(codes.Error, stage)
	c.log.Error("lookup failed", zap.String("stage", stage), zap.Error(err))
	return err
}
