package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TCApprovals = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timelly", Name: "tc_approvals_total", Help: "Approved transfer certificates",
	})
	TCRejections = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timelly", Name: "tc_rejections_total", Help: "Rejected transfer certificates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timelly", Name: "handler_errors_total", Help: "Unhandled handler errors",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "timelly", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(TCApprovals, TCRejections, HandlerErrors, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
