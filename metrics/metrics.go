// Package metrics exposes Prometheus collectors for the travel pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is safe to use as a nil pointer, in which case nothing is recorded.
type Metrics struct {
	turnsTotal       *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	upstreamFailures *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		turnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travel_turns_total",
				Help: "Total number of finished turns by retrieval route",
			},
			[]string{"route"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "travel_stage_duration_seconds",
				Help:    "Duration of pipeline stages",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		upstreamFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "travel_upstream_failures_total",
				Help: "Total number of failed or empty upstream calls by source",
			},
			[]string{"source"},
		),
	}

	reg.MustRegister(m.turnsTotal, m.stageDuration, m.upstreamFailures)
	return m
}

func (m *Metrics) TurnFinished(route string) {
	if m == nil {
		return
	}
	if route == "" {
		route = "none"
	}
	m.turnsTotal.WithLabelValues(route).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) UpstreamFailure(source string) {
	if m == nil {
		return
	}
	m.upstreamFailures.WithLabelValues(source).Inc()
}
