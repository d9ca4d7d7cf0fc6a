// Package metrics exposes Prometheus counters for crawl and chunking activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gaurav-prasanna/pagechunk/core"
)

// Failure stages for PagesFailed.
const (
	StageFetch   = "fetch"
	StageProcess = "process"
	StageSink    = "sink"
)

// Metrics holds the registered collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PagesFetched   prometheus.Counter
	PagesProcessed prometheus.Counter
	PagesSkipped   prometheus.Counter
	PagesFailed    *prometheus.CounterVec
	ChunksEmitted  prometheus.Counter
	ChunkChars     prometheus.Histogram
}

// New registers the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		PagesFetched: f.NewCounter(prometheus.CounterOpts{
			Name: "pagechunk_pages_fetched_total",
			Help: "Pages fetched successfully.",
		}),
		PagesProcessed: f.NewCounter(prometheus.CounterOpts{
			Name: "pagechunk_pages_processed_total",
			Help: "Pages assembled into a record and delivered to the sinks.",
		}),
		PagesSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "pagechunk_pages_skipped_total",
			Help: "Pages skipped because no article content was found.",
		}),
		PagesFailed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pagechunk_pages_failed_total",
			Help: "Pages that failed, by pipeline stage.",
		}, []string{"stage"}),
		ChunksEmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "pagechunk_chunks_emitted_total",
			Help: "Chunks emitted across all records.",
		}),
		ChunkChars: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pagechunk_chunk_chars",
			Help:    "Chunk length in characters.",
			Buckets: prometheus.ExponentialBuckets(50, 2, 8),
		}),
	}
}

// Fetched counts one fetched page.
func (m *Metrics) Fetched() {
	if m != nil {
		m.PagesFetched.Inc()
	}
}

// Skipped counts one extraction miss.
func (m *Metrics) Skipped() {
	if m != nil {
		m.PagesSkipped.Inc()
	}
}

// Failed counts one failure at stage.
func (m *Metrics) Failed(stage string) {
	if m != nil {
		m.PagesFailed.WithLabelValues(stage).Inc()
	}
}

// Processed counts a delivered record and its chunks.
func (m *Metrics) Processed(rec *core.PageRecord) {
	if m == nil {
		return
	}
	m.PagesProcessed.Inc()
	m.ObserveChunks(rec.Chunks)
}

// ObserveChunks records chunk counts and sizes.
func (m *Metrics) ObserveChunks(chunks []core.Chunk) {
	if m == nil {
		return
	}
	m.ChunksEmitted.Add(float64(len(chunks)))
	for _, c := range chunks {
		m.ChunkChars.Observe(float64(c.Metadata.CharCount))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
