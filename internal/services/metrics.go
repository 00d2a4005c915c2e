package services

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dpup/scenario-geometry/server/internal/lib/roadnet"
)

var (
	routeBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roadgeo",
		Subsystem: "routing",
		Name:      "builds_total",
		Help:      "Total route builds by outcome",
	}, []string{"result"})

	routeBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "roadgeo",
		Subsystem: "routing",
		Name:      "build_duration_seconds",
		Help:      "Duration of route planning and projection",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	routeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roadgeo",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Route cache lookups by result",
	}, []string{"result"})

	maneuverQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roadgeo",
		Subsystem: "maneuver",
		Name:      "queries_total",
		Help:      "Maneuver queries by operation and outcome",
	}, []string{"operation", "result"})
)

// outcome maps an error onto a low-cardinality metric label
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, roadnet.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, roadnet.ErrMalformedReference):
		return "malformed_reference"
	case errors.Is(err, roadnet.ErrUnreachable):
		return "unreachable"
	case errors.Is(err, roadnet.ErrExternalService):
		return "external_service"
	default:
		return "error"
	}
}
