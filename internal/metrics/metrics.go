// Package metrics exposes Prometheus instrumentation for the enrichment
// pipeline. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/amaumene/cinetrack/internal/library"
	"github.com/amaumene/cinetrack/internal/models"
	"github.com/amaumene/cinetrack/internal/queue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cinetrack"

// Metrics holds the collectors updated by the controllers
type Metrics struct {
	registry prometheus.Gatherer

	lookups        *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	inflight       *prometheus.GaugeVec
	storeWrites    *prometheus.CounterVec
	backups        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Metadata lookups by kind and outcome.",
		}, []string{"kind", "outcome"}),
		lookupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Duration of metadata lookups.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"kind"}),
		inflight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lookups_in_flight",
			Help:      "Metadata lookups currently running.",
		}, []string{"kind"}),
		storeWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Library writes to the persistent store by result.",
		}, []string{"result"}),
		backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Library snapshot backups by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.lookups, m.lookupDuration, m.inflight, m.storeWrites, m.backups)
	return m
}

// WatchQueue exports the enrichment queue counters
func (m *Metrics) WatchQueue(reg prometheus.Registerer, q *queue.Queue) {
	if m == nil {
		return
	}
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_length",
			Help:      "Items waiting in the enrichment queue.",
		}, func() float64 { return float64(q.Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_processed",
			Help:      "Initial work items already dequeued.",
		}, func() float64 { return float64(q.Progress().Processed) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_total",
			Help:      "Size of the initial work list.",
		}, func() float64 { return float64(q.Progress().Total) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_paused",
			Help:      "1 while the enrichment queue is paused.",
		}, func() float64 {
			if q.Paused() {
				return 1
			}
			return 0
		}),
	)
}

// WatchLibrary exports the record counts
func (m *Metrics) WatchLibrary(reg prometheus.Registerer, lib *library.Library) {
	if m == nil {
		return
	}
	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records in the library.",
		}, func() float64 { return float64(lib.Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_with_commentary",
			Help:      "Records known to have a commentary track.",
		}, func() float64 {
			n := 0
			for _, r := range lib.Records() {
				if r.WithCommentary() {
					n++
				}
			}
			return float64(n)
		}),
	)
}

// LookupStarted marks a lookup of the given kind as running
func (m *Metrics) LookupStarted(kind models.LookupKind) {
	if m == nil {
		return
	}
	m.inflight.WithLabelValues(string(kind)).Inc()
}

// LookupFinished records the outcome and duration of a lookup
func (m *Metrics) LookupFinished(kind models.LookupKind, outcome models.LookupOutcome, took time.Duration) {
	if m == nil {
		return
	}
	m.inflight.WithLabelValues(string(kind)).Dec()
	m.lookups.WithLabelValues(string(kind), string(outcome)).Inc()
	m.lookupDuration.WithLabelValues(string(kind)).Observe(took.Seconds())
}

// StoreWrite records a library write to the persistent store
func (m *Metrics) StoreWrite(err error) {
	if m == nil {
		return
	}
	m.storeWrites.WithLabelValues(result(err)).Inc()
}

// Backup records a snapshot backup run
func (m *Metrics) Backup(err error) {
	if m == nil {
		return
	}
	m.backups.WithLabelValues(result(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
