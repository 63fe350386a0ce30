package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Typing tests
	TypingTestsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "typing_tests_submitted_total",
			Help: "Total typing test results saved",
		},
		[]string{"language"},
	)
	CertificatesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "certificates_issued_total",
			Help: "Total certificates issued",
		},
	)
	LeadersCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaders_cache_lookups_total",
			Help: "Leaderboard cache lookups",
		},
		[]string{"result"}, // hit|miss|error
	)

	// Mail
	MailSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_sent_total",
			Help: "Outbound emails by outcome",
		},
		[]string{"status"}, // ok|error
	)

	// Worker queue
	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)

	initOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestLatency,
			TypingTestsSubmitted,
			CertificatesIssued,
			LeadersCacheLookups,
			MailSent,
			WorkerQueueDepth,
		)
	})
}
