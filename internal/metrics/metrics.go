package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcome labels.
const (
	StatusSuccess = "success"
	StatusCached  = "cached"
	StatusError   = "error"
	StatusBusy    = "busy"
)

// Fetch pipeline metrics
var (
	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafetch_fetches_total",
			Help: "Total number of fetch requests by format and outcome.",
		},
		[]string{"format", "status"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediafetch_fetch_duration_seconds",
			Help:    "Time spent downloading, converting and storing one artifact.",
			Buckets: []float64{1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"format"},
	)

	FetchesInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediafetch_fetches_in_flight",
			Help: "Number of download attempts currently running.",
		},
	)

	TranscodesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediafetch_transcodes_total",
			Help: "Total number of ffmpeg conversions by target format and outcome.",
		},
		[]string{"format", "status"},
	)

	ArtifactsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mediafetch_artifacts_swept_total",
			Help: "Total number of artifacts removed by the retention sweep.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		FetchesTotal,
		FetchDuration,
		FetchesInFlight,
		TranscodesTotal,
		ArtifactsSweptTotal,
	)
}
