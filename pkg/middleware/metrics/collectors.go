package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)

	totalHttpRequestsAuthenticated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_authenticated", Help: "http requests by authentication state"},
		[]string{"authenticated"},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	tokenVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "token_verifications_total", Help: "access token verifications by result"},
		[]string{"result"},
	)

	jwksFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "jwks_fetches_total", Help: "signing key set fetches by result"},
		[]string{"result"},
	)

	reminders = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "reminders_total", Help: "booking reminders by result"},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsAuthenticated,
		totalHttpRequestsToUri,
		totalHttpRequests,
		tokenVerifications,
		jwksFetches,
		reminders,
	)
}

// ObserveTokenVerification counts one verification outcome ("ok" or an error kind).
func ObserveTokenVerification(result string) { tokenVerifications.WithLabelValues(result).Inc() }

// ObserveKeyFetch counts one key set fetch outcome.
func ObserveKeyFetch(result string) { jwksFetches.WithLabelValues(result).Inc() }

// ObserveReminder counts one reminder outcome: sent, skipped or failed.
func ObserveReminder(result string) { reminders.WithLabelValues(result).Inc() }
