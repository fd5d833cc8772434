// Package server exposes the shadow calculator over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/wallshadow/internal/calculator"
	"github.com/Faultbox/wallshadow/internal/config"
	"github.com/Faultbox/wallshadow/internal/geocode"
	"github.com/Faultbox/wallshadow/internal/observability"
	"github.com/Faultbox/wallshadow/internal/timezone"
	"github.com/Faultbox/wallshadow/pkg/shadow"
)

// Routes.
const (
	RouteShadow      = "/api/v1/shadow"
	RoutePlaceShadow = "/api/v1/place-shadow"
	RouteHealth      = "/healthz"
)

// Server handles HTTP requests for shadow computations.
type Server struct {
	cfg     *config.Config
	calc    *calculator.Calculator
	metrics *observability.Collector
	log     *zap.Logger
}

// New creates a server. metrics and log may be nil.
func New(cfg *config.Config, calc *calculator.Calculator, metrics *observability.Collector, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{cfg: cfg, calc: calc, metrics: metrics, log: log}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`

	// Report is set when the place and sun were resolved but no shadow exists.
	Report *calculator.Report `json:"report,omitempty"`
}

// ShadowResponse is the body of a successful (or warned) angle query.
type ShadowResponse struct {
	Result  shadow.Result `json:"result"`
	Warning string        `json:"warning,omitempty"`
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET "+RouteShadow, s.instrument(RouteShadow, s.handleShadow))
	mux.Handle("GET "+RoutePlaceShadow, s.instrument(RoutePlaceShadow, s.handlePlaceShadow))
	mux.HandleFunc("GET "+RouteHealth, s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET "+s.cfg.Server.MetricsPath, s.metrics.Handler())
	}
	return mux
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving shadow API", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down shadow API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleShadow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var in shadow.Input
	var err error
	if in.ElevationDeg, err = requireFloat(q, "elevation"); err != nil {
		s.badRequest(w, err)
		return
	}
	if in.AzimuthDeg, err = requireFloat(q, "azimuth"); err != nil {
		s.badRequest(w, err)
		return
	}
	if in.WallHeightM, err = requireFloat(q, "height"); err != nil {
		s.badRequest(w, err)
		return
	}
	if in.SlopeDeg, err = parseFloatParam(q, "slope", 0); err != nil {
		s.badRequest(w, err)
		return
	}
	if in.AspectDeg, err = parseFloatParam(q, "aspect", 0); err != nil {
		s.badRequest(w, err)
		return
	}

	res, err := s.calc.Project(r.Context(), in)
	if err != nil && !shadow.KindOf(err).IsWarning() {
		s.writeError(w, err, nil)
		return
	}
	resp := ShadowResponse{Result: res}
	if err != nil {
		resp.Warning = shadow.KindOf(err).Message()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlaceShadow(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := calculator.Request{
		Place:     q.Get("place"),
		LocalTime: q.Get("time"),
	}
	if req.Place == "" {
		req.Place = s.cfg.Site.Place
	}
	if req.LocalTime == "" {
		req.LocalTime = s.cfg.Site.DateTime
	}

	var err error
	if req.WallHeightM, err = parseFloatParam(q, "height", s.cfg.Wall.HeightM); err != nil {
		s.badRequest(w, err)
		return
	}
	if req.SlopeDeg, err = parseFloatParam(q, "slope", s.cfg.Terrain.SlopeDeg); err != nil {
		s.badRequest(w, err)
		return
	}
	if req.AspectDeg, err = parseFloatParam(q, "aspect", s.cfg.Terrain.AspectDeg); err != nil {
		s.badRequest(w, err)
		return
	}

	rep, err := s.calc.Compute(r.Context(), req)
	if kind := shadow.KindOf(err); err != nil && !kind.IsWarning() {
		var partial *calculator.Report
		if kind != 0 {
			partial = &rep
		}
		s.writeError(w, err, partial)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// statusFor maps an error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	if kind := shadow.KindOf(err); kind != 0 {
		switch kind {
		case shadow.InvalidAngle, shadow.InvalidHeight:
			return http.StatusBadRequest, kind.String()
		default:
			return http.StatusUnprocessableEntity, kind.String()
		}
	}
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		return http.StatusNotFound, "place_not_found"
	case errors.Is(err, timezone.ErrNotFound):
		return http.StatusNotFound, "timezone_not_found"
	case errors.Is(err, calculator.ErrBadTime):
		return http.StatusBadRequest, "invalid_time"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusBadGateway, "upstream_error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error, rep *calculator.Report) {
	status, code := statusFor(err)
	msg := "The shadow could not be computed."
	if kind := shadow.KindOf(err); kind != 0 {
		msg = kind.Message()
	}
	if status >= 500 {
		s.log.Warn("request failed", zap.String("code", code), zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg, Detail: err.Error(), Report: rep})
}

func (s *Server) badRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requireFloat parses a mandatory float query parameter.
func requireFloat(values url.Values, key string) (float64, error) {
	if values.Get(key) == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	return parseFloatParam(values, key, 0)
}

// parseFloatParam parses a float query parameter, falling back to defaultValue.
func parseFloatParam(values url.Values, key string, defaultValue float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
