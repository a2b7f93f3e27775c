package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "anonmektep", Name: "bot_updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "anonmektep", Name: "handler_errors_total", Help: "Handler errors",
	})
	ReportsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "anonmektep", Name: "reports_created_total", Help: "Reports accepted via the public form",
	}, []string{"problem_type"})
	CaptchaRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "anonmektep", Name: "captcha_rejected_total", Help: "Submissions rejected by the security check",
	})
	NotifyFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "anonmektep", Name: "notify_failures_total", Help: "Failed telegram alert deliveries",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "anonmektep", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, ReportsCreated, CaptchaRejected, NotifyFailures, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
