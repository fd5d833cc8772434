// Package geocode resolves place names to coordinates through a Nominatim
// compatible search API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the search yields no result.
var ErrNotFound = errors.New("place not found")

// Place is a resolved place name.
type Place struct {
	Query       string    `json:"query"`
	DisplayName string    `json:"display_name"`
	Point       orb.Point `json:"point"` // lon, lat
}

// Lat returns the latitude in degrees.
func (p Place) Lat() float64 { return p.Point.Lat() }

// Lon returns the longitude in degrees.
func (p Place) Lon() float64 { return p.Point.Lon() }

// Client queries a Nominatim server.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	log       *zap.Logger
}

// NewClient creates a client. A nil logger disables logging.
func NewClient(baseURL, userAgent string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: timeout},
		log:       log,
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Lookup returns the best match for name.
func (c *Client) Lookup(ctx context.Context, name string) (Place, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Place{}, fmt.Errorf("%w: empty name", ErrNotFound)
	}

	q := url.Values{}
	q.Set("q", name)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return Place{}, fmt.Errorf("building geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Place{}, fmt.Errorf("geocoding %q: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Place{}, fmt.Errorf("geocoding %q: status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Place{}, fmt.Errorf("decoding geocode response: %w", err)
	}
	if len(results) == 0 {
		return Place{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parsing latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Place{}, fmt.Errorf("parsing longitude %q: %w", results[0].Lon, err)
	}

	place := Place{
		Query:       name,
		DisplayName: results[0].DisplayName,
		Point:       orb.Point{lon, lat},
	}
	c.log.Debug("geocoded place",
		zap.String("query", name),
		zap.String("display_name", place.DisplayName),
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
		zap.Duration("took", time.Since(start)),
	)
	return place, nil
}
