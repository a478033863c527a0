// Package metrics exposes resolver counters in the Prometheus text format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mucache"

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder counts cache lookups and download outcomes per site
type Recorder struct {
	registry  *prometheus.Registry
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	downloads *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// New creates a Recorder with its own registry, including Go runtime and
// process collectors
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Requests answered from the local cache.",
		}, []string{"site"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Requests that required a download.",
		}, []string{"site"}),
		downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Finished downloads by site and outcome.",
		}, []string{"site", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "download_duration_seconds",
			Help:      "Time spent downloading, including failed attempts.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}, []string{"site"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.hits, r.misses, r.downloads, r.duration,
	)
	return r
}

// CacheHit records a request served from the cache
func (r *Recorder) CacheHit(site string) {
	r.hits.WithLabelValues(site).Inc()
}

// CacheMiss records a request that needs a download
func (r *Recorder) CacheMiss(site string) {
	r.misses.WithLabelValues(site).Inc()
}

// DownloadFinished records the outcome and duration of a download
func (r *Recorder) DownloadFinished(site string, ok bool, elapsed time.Duration) {
	outcome := OutcomeSuccess
	if !ok {
		outcome = OutcomeFailure
	}
	r.downloads.WithLabelValues(site, outcome).Inc()
	r.duration.WithLabelValues(site).Observe(elapsed.Seconds())
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
