package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "regwatch"

var (
	Registry = prometheus.NewRegistry()

	FetchAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_attempts_total",
		Help:      "Forwarding attempts per source, path and outcome.",
	}, []string{"source", "path", "outcome"})

	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups per source, by result (hit, stale, miss).",
	}, []string{"source", "result"})

	SourceUpdates = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "source_updates",
		Help:      "Updates obtained from each source during the last refresh.",
	}, []string{"source"})

	RefreshDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "refresh_duration_seconds",
		Help:      "Duration of a full aggregation cycle.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	AggregatedUpdates = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "aggregated_updates",
		Help:      "Updates in the last aggregate result.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		FetchAttempts,
		CacheLookups,
		SourceUpdates,
		RefreshDuration,
		AggregatedUpdates,
	)
}
