package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

type seenRequest struct {
	path      string
	query     url.Values
	userAgent string
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *seenRequest) {
	t.Helper()
	seen := &seenRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.path = r.URL.Path
		seen.query = r.URL.Query()
		seen.userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestLookup(t *testing.T) {
	srv, seen := newServer(t, http.StatusOK,
		`[{"lat":"-15.5986686","lon":"-56.0991301","display_name":"Cuiabá, Mato Grosso, Brasil"}]`)

	c := NewClient(srv.URL+"/", "sombra_web", time.Second, nil)
	place, err := c.Lookup(context.Background(), "Cuiabá")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if place.Lat() != -15.5986686 || place.Lon() != -56.0991301 {
		t.Errorf("unexpected point %v", place.Point)
	}
	if place.DisplayName != "Cuiabá, Mato Grosso, Brasil" {
		t.Errorf("unexpected display name %q", place.DisplayName)
	}

	if seen.path != "/search" {
		t.Errorf("path = %s, want /search", seen.path)
	}
	q := seen.query
	if q.Get("q") != "Cuiabá" || q.Get("format") != "jsonv2" || q.Get("limit") != "1" {
		t.Errorf("unexpected query %v", q)
	}
	if ua := seen.userAgent; ua != "sombra_web" {
		t.Errorf("User-Agent = %q, want sombra_web", ua)
	}
}

func TestLookupNotFound(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `[]`)
	c := NewClient(srv.URL, "test", time.Second, nil)

	_, err := c.Lookup(context.Background(), "Atlantis")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookupEmptyName(t *testing.T) {
	c := NewClient("http://unused.invalid", "test", time.Second, nil)
	if _, err := c.Lookup(context.Background(), "   "); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLookupUpstreamError(t *testing.T) {
	srv, _ := newServer(t, http.StatusServiceUnavailable, "busy")
	c := NewClient(srv.URL, "test", time.Second, nil)

	_, err := c.Lookup(context.Background(), "Cuiabá")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want upstream error", err)
	}
}

func TestLookupBadCoordinates(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `[{"lat":"north","lon":"0","display_name":"x"}]`)
	c := NewClient(srv.URL, "test", time.Second, nil)

	if _, err := c.Lookup(context.Background(), "x"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLookupCanceled(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `[]`)
	c := NewClient(srv.URL, "test", time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Lookup(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
