package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TurnFinished("vector")
	m.TurnFinished("vector")
	m.TurnFinished("")
	m.UpstreamFailure("weather")
	m.ObserveStage("enrich", 250*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues("vector")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamFailures.WithLabelValues("weather")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.stageDuration, "travel_stage_duration_seconds"))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TurnFinished("web")
		m.ObserveStage("parse", time.Second)
		m.UpstreamFailure("images")
	})
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
