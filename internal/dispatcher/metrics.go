package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blackboxscan_dispatches_total",
		Help: "Total number of requests sent to the analysis service, by operation.",
	}, []string{"operation"})
	dispatchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blackboxscan_dispatch_failures_total",
		Help: "Total number of failed analysis service calls, by operation and failure kind.",
	}, []string{"operation", "kind"})
	dispatchRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blackboxscan_dispatch_rejected_total",
		Help: "Total number of dispatches refused before any network call, by reason.",
	}, []string{"reason"})
	dispatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "blackboxscan_dispatch_duration_seconds",
		Help:    "Duration of analysis service calls.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"operation"})
)
