package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "credscan_predictions_total",
		Help: "Completed credibility predictions by status and input type",
	}, []string{"status", "input_type"})

	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "credscan_analysis_duration_seconds",
		Help:    "End-to-end analysis pipeline duration",
		Buckets: prometheus.DefBuckets,
	})

	ScoreDistribution = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "credscan_score",
		Help:    "Distribution of credibility scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	JobsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "credscan_jobs_inflight",
		Help: "Analysis jobs currently waiting or active",
	})

	ResultCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "credscan_result_cache_hits_total",
		Help: "Analyses served from the content-hash result cache",
	})
)

// Handler exposes the /metrics HTTP handler with a singleton registry.
func Handler() http.Handler {
	once.Do(func() {
		prometheus.MustRegister(
			PredictionsTotal,
			AnalysisDuration,
			ScoreDistribution,
			JobsInFlight,
			ResultCacheHits,
		)
	})
	return promhttp.Handler()
}
