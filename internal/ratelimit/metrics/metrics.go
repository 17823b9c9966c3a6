package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RequestsAllowed   *prometheus.CounterVec
	RequestsDenied    *prometheus.CounterVec
	SuspiciousBlocked *prometheus.CounterVec
	StoreFailures     prometheus.Counter
	AllowlistBypasses *prometheus.CounterVec
	GlobalThrottled   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		RequestsAllowed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "limitgate_requests_allowed_total",
			Help: "Total number of requests admitted by the rate limiter",
		}, []string{"category"}),
		RequestsDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "limitgate_requests_denied_total",
			Help: "Total number of requests rejected with 429",
		}, []string{"category"}),
		SuspiciousBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "limitgate_suspicious_blocked_total",
			Help: "Total number of requests blocked by the pattern scanner",
		}, []string{"family"}),
		StoreFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "limitgate_counter_store_failures_total",
			Help: "Total number of counter store failures handled fail-open",
		}),
		AllowlistBypasses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "limitgate_allowlist_bypasses_total",
			Help: "Total number of requests bypassing limits via allowlist",
		}, []string{"kind"}),
		GlobalThrottled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "limitgate_global_throttled_total",
			Help: "Total number of requests rejected by the global throttle",
		}),
	}
}

func (m *Metrics) RecordAllowed(category string) {
	m.RequestsAllowed.WithLabelValues(category).Inc()
}

func (m *Metrics) RecordDenied(category string) {
	m.RequestsDenied.WithLabelValues(category).Inc()
}

func (m *Metrics) RecordSuspiciousBlocked(family string) {
	m.SuspiciousBlocked.WithLabelValues(family).Inc()
}

func (m *Metrics) RecordStoreFailure() {
	m.StoreFailures.Inc()
}

func (m *Metrics) RecordAllowlistBypass(kind string) {
	m.AllowlistBypasses.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordGlobalThrottled() {
	m.GlobalThrottled.Inc()
}
