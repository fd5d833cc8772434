// Package timezone maps coordinates to IANA time zones.
package timezone

import (
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/ringsaturn/tzf"
)

// ErrNotFound is returned when no zone covers the point.
var ErrNotFound = errors.New("timezone not found")

// finder is the part of tzf.F the resolver uses.
type finder interface {
	GetTimezoneName(lng float64, lat float64) string
}

// Resolver looks up the zone containing a point.
type Resolver struct {
	f finder
}

// NewResolver loads the embedded tzf boundary data.
func NewResolver() (*Resolver, error) {
	f, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("loading timezone data: %w", err)
	}
	return &Resolver{f: f}, nil
}

// Lookup returns the IANA name of the zone containing p.
func (r *Resolver) Lookup(p orb.Point) (string, error) {
	if p.Lat() < -90 || p.Lat() > 90 || p.Lon() < -180 || p.Lon() > 180 {
		return "", fmt.Errorf("%w: point %v outside lat/lon range", ErrNotFound, p)
	}
	name := r.f.GetTimezoneName(p.Lon(), p.Lat())
	if name == "" {
		return "", fmt.Errorf("%w: %v", ErrNotFound, p)
	}
	return name, nil
}

// Location returns the *time.Location for p.
func (r *Resolver) Location(p orb.Point) (*time.Location, error) {
	name, err := r.Lookup(p)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading zone %s: %w", name, err)
	}
	return loc, nil
}
