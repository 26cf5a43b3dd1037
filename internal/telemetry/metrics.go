package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SubmissionsTotal counts requests hitting the submission endpoints
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statefinder",
			Name:      "submissions_total",
			Help:      "Total number of location submissions by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	// ForwardErrors counts submissions the log sinks failed to record
	ForwardErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statefinder",
			Name:      "forward_errors_total",
			Help:      "Total number of submissions that could not be forwarded",
		},
		[]string{"endpoint"},
	)

	// GeocodeLookups counts reverse geocode calls made by the client
	GeocodeLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statefinder",
			Name:      "geocode_lookups_total",
			Help:      "Total number of reverse geocode lookups by outcome",
		},
		[]string{"outcome"},
	)

	// RunsTotal counts client runs by their final phase
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statefinder",
			Name:      "runs_total",
			Help:      "Total number of find-state runs by final phase",
		},
		[]string{"phase"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(SubmissionsTotal)
		prometheus.DefaultRegisterer.Register(ForwardErrors)
		prometheus.DefaultRegisterer.Register(GeocodeLookups)
		prometheus.DefaultRegisterer.Register(RunsTotal)
	})
}
