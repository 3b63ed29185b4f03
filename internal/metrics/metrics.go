package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecomputeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sleepleague", Name: "recompute_total", Help: "Daily score recomputations by outcome",
	}, []string{"outcome"})
	EventsWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sleepleague", Name: "score_events_written_total", Help: "Score events persisted by recomputation",
	})
	RecomputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sleepleague", Name: "recompute_duration_seconds", Help: "Recomputation latency",
		Buckets: prometheus.DefBuckets,
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sleepleague", Name: "handler_errors_total", Help: "HTTP handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sleepleague", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(RecomputeTotal, EventsWritten, RecomputeDuration, HandlerErrors, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveRecompute(outcome string, err error, d time.Duration) {
	if err != nil {
		outcome = "error"
	}
	RecomputeTotal.WithLabelValues(outcome).Inc()
	RecomputeDuration.Observe(d.Seconds())
}
