// Package metrics provides Prometheus metrics for compile runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/perseus-aa/manifest-compiler/compiler"
)

const namespace = "aacompile"

// Metrics holds the collectors of one process. It implements
// iiif.Observer and compiler.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	// Compile metrics
	ArtifactsTotal  *prometheus.CounterVec
	CompileDuration *prometheus.HistogramVec
	LastRunSuccess  prometheus.Gauge
	LastRunTime     prometheus.Gauge

	// Image server metrics
	ProbesTotal   *prometheus.CounterVec
	ProbeDuration prometheus.Histogram

	// Graph metrics
	GraphFilesLoaded prometheus.Gauge
	GraphTriples     prometheus.Gauge
	Entities         *prometheus.GaugeVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.ArtifactsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_total",
			Help:      "Total number of output files by compiler and outcome",
		},
		[]string{"compiler", "outcome"},
	)

	m.CompileDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compile_duration_seconds",
			Help:      "Duration of compiler runs in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"compiler"},
	)

	m.LastRunSuccess = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last compile run finished without error",
		},
	)

	m.LastRunTime = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last compile run finished",
		},
	)

	m.ProbesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_probes_total",
			Help:      "Total number of image existence probes by result",
		},
		[]string{"result"},
	)

	m.ProbeDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "image_probe_duration_seconds",
			Help:      "Duration of image existence probes in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	m.GraphFilesLoaded = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_files_loaded",
			Help:      "Number of graph files loaded",
		},
	)

	m.GraphTriples = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_triples",
			Help:      "Number of distinct triples in the graph store",
		},
	)

	m.Entities = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Number of artifacts by type",
		},
		[]string{"type"},
	)

	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveProbe implements iiif.Observer.
func (m *Metrics) ObserveProbe(exists bool, elapsed time.Duration) {
	result := "missing"
	if exists {
		result = "found"
	}
	m.ProbesTotal.WithLabelValues(result).Inc()
	m.ProbeDuration.Observe(elapsed.Seconds())
}

// RecordOutcome implements compiler.Recorder.
func (m *Metrics) RecordOutcome(name string, outcome compiler.Outcome) {
	m.ArtifactsTotal.WithLabelValues(name, string(outcome)).Inc()
}

// RecordCompile records the duration of one compiler run.
func (m *Metrics) RecordCompile(name string, duration time.Duration) {
	m.CompileDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordRun records the end of a whole run.
func (m *Metrics) RecordRun(err error, at time.Time) {
	if err != nil {
		m.LastRunSuccess.Set(0)
	} else {
		m.LastRunSuccess.Set(1)
	}
	m.LastRunTime.Set(float64(at.Unix()))
}

// UpdateGraphStats updates graph statistics.
func (m *Metrics) UpdateGraphStats(files, triples int, entitiesByType map[string]int) {
	m.GraphFilesLoaded.Set(float64(files))
	m.GraphTriples.Set(float64(triples))
	m.Entities.Reset()
	for t, n := range entitiesByType {
		m.Entities.WithLabelValues(t).Set(float64(n))
	}
}

// WriteToTextfile writes every metric in the text exposition format, for
// the node exporter textfile collector.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
