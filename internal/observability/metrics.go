// Package observability holds the Prometheus collectors and tracing setup.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Faultbox/wallshadow/pkg/shadow"
)

// OutcomeOK labels a computation that produced a valid shadow.
const OutcomeOK = "ok"

// Collector bundles the calculator's Prometheus metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Computations   *prometheus.CounterVec
	LookupFailures *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDurations  *prometheus.HistogramVec
}

// NewCollector registers metrics against reg, defaulting to the global
// registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	computations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallshadow_computations_total",
		Help: "Shadow computations by outcome (ok or failure kind).",
	}, []string{"outcome"}), "wallshadow_computations_total")
	if err != nil {
		return nil, err
	}

	lookups, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallshadow_lookup_failures_total",
		Help: "Failed collaborator lookups by pipeline stage.",
	}, []string{"stage"}), "wallshadow_lookup_failures_total")
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallshadow_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"}), "wallshadow_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wallshadow_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route"}), "wallshadow_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:       gatherer,
		Computations:   computations,
		LookupFailures: lookups,
		HTTPRequests:   requests,
		HTTPDurations:  durations,
	}, nil
}

// ObserveComputation counts one shadow.Compute call by its outcome.
func (c *Collector) ObserveComputation(err error) {
	if c == nil {
		return
	}
	c.Computations.WithLabelValues(OutcomeLabel(err)).Inc()
}

// ObserveLookupFailure counts a failed pipeline stage.
func (c *Collector) ObserveLookupFailure(stage string) {
	if c == nil {
		return
	}
	c.LookupFailures.WithLabelValues(stage).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// OutcomeLabel maps a computation error to its metric label.
func OutcomeLabel(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if k := shadow.KindOf(err); k != 0 {
		return k.String()
	}
	return "error"
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
