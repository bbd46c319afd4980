package xsync

import "github.com/prometheus/client_golang/prometheus"

const (
	ResultStored          = "stored"
	ResultNoToken         = "no_token"
	ResultNoCycle         = "no_cycle"
	ResultTransformFailed = "transform_failed"
	ResultStoreFailed     = "store_failed"
)

var (
	syncResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whoopsync",
		Subsystem: "sync",
		Name:      "user_results_total",
		Help:      "Per-user sync outcomes, labeled by result.",
	}, []string{"result"})

	syncRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "whoopsync",
		Subsystem: "sync",
		Name:      "run_duration_seconds",
		Help:      "Time spent syncing every stored user in one pass.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	publishFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "whoopsync",
		Subsystem: "ingest",
		Name:      "publish_failures_total",
		Help:      "Stored records whose ingestion event could not be published.",
	})

	upstreamRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "whoopsync",
		Subsystem: "whoop_api",
		Name:      "ratelimit_remaining",
		Help:      "Requests remaining in the current WHOOP rate limit window, as last reported.",
	})
)

func init() {
	prometheus.MustRegister(syncResults, syncRunDuration, publishFailures, upstreamRemaining)
}
