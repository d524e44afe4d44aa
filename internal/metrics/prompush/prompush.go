// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A one-shot batch job has nothing for a scraper to find once it exits, so
// collected counters and step durations are pushed to a Pushgateway at the
// end of the run instead of being exposed on an HTTP endpoint. All
// Prometheus-specific dependencies stay in this package.
package prompush

import (
	"fmt"

	"prescricoes/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // consolidation_step_total
	stepDuration *prometheus.SummaryVec // consolidation_step_duration_seconds
	recordCount  *prometheus.CounterVec // consolidation_records_total
	fileCount    prometheus.Counter     // consolidation_files_total
}

// NewBackend constructs a Pushgateway backend. jobName doubles as the
// Pushgateway "job" grouping key.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "prescricoes"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consolidation_step_total",
			Help: "Consolidation step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "consolidation_step_duration_seconds",
			Help:       "Duration of consolidation steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	recordCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consolidation_records_total",
			Help: "Record-level counts per kind (rows_written, rows_skipped, rows_unmatched).",
		},
		[]string{"kind"},
	)
	fileCount := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "consolidation_files_total",
			Help: "Source files consolidated in this run.",
		},
	)

	for _, c := range []prometheus.Collector{stepCounter, stepDuration, recordCount, fileCount} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		stepCounter:  stepCounter,
		stepDuration: stepDuration,
		recordCount:  recordCount,
		fileCount:    fileCount,
	}, nil
}

// IncCounter implements metrics.Backend by routing known metric names to
// their collectors. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "consolidation_step_total":
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
	case "consolidation_records_total":
		b.recordCount.WithLabelValues(labels["kind"]).Add(delta)
	case "consolidation_files_total":
		b.fileCount.Add(delta)
	}
}

// ObserveDuration implements metrics.Backend.
func (b *Backend) ObserveDuration(name string, seconds float64, labels metrics.Labels) {
	if name != "consolidation_step_duration_seconds" {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(seconds)
}

// Flush pushes the collected registry to the Pushgateway.
func (b *Backend) Flush() error {
	if err := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg).Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
