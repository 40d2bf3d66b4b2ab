// Package metrics exposes Prometheus metrics for the settlement engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type SettlementMetrics struct {
	registry *prometheus.Registry

	RunsTotal        prometheus.Counter
	RunDuration      prometheus.Histogram
	PositionsSettled *prometheus.CounterVec
	ClassifyFailures prometheus.Counter
	PublishFailures  prometheus.Counter
	StatsRecalcs     prometheus.Counter
	StatsFailures    prometheus.Counter
}

func New() *SettlementMetrics {
	registry := prometheus.NewRegistry()

	m := &SettlementMetrics{
		registry: registry,
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_runs_total",
			Help: "Total settlement batch runs.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "settlement_run_duration_seconds",
			Help:    "Duration of settlement batch runs.",
			Buckets: prometheus.DefBuckets,
		}),
		PositionsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settlement_positions_settled_total",
			Help: "Positions settled, by outcome.",
		}, []string{"outcome"}),
		ClassifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_classify_failures_total",
			Help: "Positions left pending after a classification failure.",
		}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_publish_failures_total",
			Help: "Settlement events that could not be published.",
		}),
		StatsRecalcs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_stats_recalcs_total",
			Help: "Expert statistics recalculations.",
		}),
		StatsFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settlement_stats_failures_total",
			Help: "Expert statistics recalculations that failed.",
		}),
	}

	registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.PositionsSettled,
		m.ClassifyFailures,
		m.PublishFailures,
		m.StatsRecalcs,
		m.StatsFailures,
	)
	return m
}

func (m *SettlementMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}
