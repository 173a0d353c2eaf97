// Package metrics exposes prometheus instrumentation on a private registry
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the service collectors. Construct once in main and share
// through module deps; a private registry keeps tests isolated
type Metrics struct {
	reg *prometheus.Registry

	// Resolutions counts terminal resolution outcomes per provider
	Resolutions *prometheus.CounterVec

	// UpstreamLatency observes upstream call duration per target and call
	UpstreamLatency *prometheus.HistogramVec

	// CacheEvents counts credential cache hits and misses per cache
	CacheEvents *prometheus.CounterVec
}

// New builds a Metrics bundle backed by a fresh registry
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "drsgate",
				Name:      "resolutions_total",
				Help:      "Terminal resolution outcomes by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		UpstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "drsgate",
				Name:      "upstream_request_duration_seconds",
				Help:      "Latency of upstream provider and identity broker calls",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"target", "call"},
		),
		CacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "drsgate",
				Name:      "credential_cache_events_total",
				Help:      "Credential cache hits and misses by cache name",
			},
			[]string{"cache", "event"},
		),
	}
	m.reg.MustRegister(
		m.Resolutions,
		m.UpstreamLatency,
		m.CacheEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveUpstream records one upstream call duration
func (m *Metrics) ObserveUpstream(target, call string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamLatency.WithLabelValues(target, call).Observe(elapsed.Seconds())
}

// CountResolution records a terminal resolution outcome
func (m *Metrics) CountResolution(provider, outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(provider, outcome).Inc()
}

// CountCache records a cache hit or miss
func (m *Metrics) CountCache(cacheName, event string) {
	if m == nil {
		return
	}
	m.CacheEvents.WithLabelValues(cacheName, event).Inc()
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
