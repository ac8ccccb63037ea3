// Package metrics records ingestion and correction counters in a Prometheus
// registry. The CLI is short-lived, so the registry is written out as a
// node-exporter textfile at the end of a command instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "goaliemetrics"

// Outcome labels.
const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"

	OutcomeCorrected = "corrected"
	OutcomeAbsent    = "absent"
)

// Recorder owns a private registry and the collectors registered on it.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	ingestFiles    *prometheus.CounterVec
	playersAdded   prometheus.Counter
	eventsAdded    prometheus.Counter
	ingestDuration prometheus.Histogram
	corrections    *prometheus.CounterVec
	lookupRetries  prometheus.Counter
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		ingestFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "files_total",
			Help:      "Corpus documents seen by ingestion, by outcome.",
		}, []string{"outcome"}),
		playersAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "players_added_total",
			Help:      "Player rows inserted by ingestion.",
		}),
		eventsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "events_added_total",
			Help:      "Shot events appended by ingestion.",
		}),
		ingestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "run_duration_seconds",
			Help:      "Wall time of an ingestion run.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		corrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "correction",
			Name:      "players_total",
			Help:      "Players visited by the handedness correction, by outcome.",
		}, []string{"outcome"}),
		lookupRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "correction",
			Name:      "lookup_retries_total",
			Help:      "Lookups retried after a transient failure.",
		}),
	}
	r.registry.MustRegister(
		r.ingestFiles, r.playersAdded, r.eventsAdded, r.ingestDuration,
		r.corrections, r.lookupRetries,
	)
	return r
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// IngestFile counts one document with the given outcome.
func (r *Recorder) IngestFile(outcome string) {
	if r == nil {
		return
	}
	r.ingestFiles.WithLabelValues(outcome).Inc()
}

// IngestCommitted adds the rows written by one document commit.
func (r *Recorder) IngestCommitted(players, events int) {
	if r == nil {
		return
	}
	r.playersAdded.Add(float64(players))
	r.eventsAdded.Add(float64(events))
}

// IngestRun observes the duration of a whole run.
func (r *Recorder) IngestRun(d time.Duration) {
	if r == nil {
		return
	}
	r.ingestDuration.Observe(d.Seconds())
}

// Correction counts one player visited by the correction batch.
func (r *Recorder) Correction(outcome string) {
	if r == nil {
		return
	}
	r.corrections.WithLabelValues(outcome).Inc()
}

// LookupRetry counts one retried lookup.
func (r *Recorder) LookupRetry() {
	if r == nil {
		return
	}
	r.lookupRetries.Inc()
}

// WriteTextfile writes the registry in the text exposition format. An empty
// path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
