// Package metrics exposes Prometheus instruments for feed fetches and delta
// computations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	feedFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airdelta_feed_fetch_total",
		Help: "Feed fetches by side and outcome",
	}, []string{"side", "outcome"})

	feedFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "airdelta_feed_fetch_duration_seconds",
		Help:    "Duration of feed fetches",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	}, []string{"side"})

	readingsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airdelta_readings_dropped_total",
		Help: "Raw readings dropped by the normalizer",
	})

	deltaComputeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airdelta_delta_compute_total",
		Help: "Delta computations by outcome",
	}, []string{"outcome"})

	deltaComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "airdelta_delta_compute_duration_seconds",
		Help:    "End-to-end duration of delta computations, fetches included",
		Buckets: prometheus.DefBuckets,
	})

	gapPercentage = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "airdelta_gap_percentage",
		Help:    "Share of synthesized grid points per delta report",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 75, 100},
	})
)

// ObserveFetch records one feed fetch.
func ObserveFetch(side string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	feedFetchTotal.WithLabelValues(side, outcome).Inc()
	feedFetchDuration.WithLabelValues(side).Observe(d.Seconds())
}

// AddDropped counts readings dropped during normalization.
func AddDropped(n int) {
	if n > 0 {
		readingsDroppedTotal.Add(float64(n))
	}
}

// ObserveDelta records one delta computation. outcome is "ok",
// "insufficient_data", "fetch_failure" or "error".
func ObserveDelta(outcome string, d time.Duration) {
	deltaComputeTotal.WithLabelValues(outcome).Inc()
	deltaComputeDuration.Observe(d.Seconds())
}

// ObserveGapPercentage records the gap share of a successful report.
func ObserveGapPercentage(p float64) {
	gapPercentage.Observe(p)
}
