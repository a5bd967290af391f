// Package metrics exposes Prometheus collectors for the CivicDesk server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "civicdesk_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "civicdesk_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	reportSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "civicdesk_report_submissions_total",
		Help: "Report submission attempts by result",
	}, []string{"result"})

	otpVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "civicdesk_otp_verifications_total",
		Help: "OTP verification attempts by result",
	}, []string{"result"})

	requestsThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "civicdesk_requests_throttled_total",
		Help: "Requests rejected by the per-client request limiter",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

// ObserveSubmission counts a report submission outcome.
func ObserveSubmission(result string) {
	reportSubmissions.WithLabelValues(result).Inc()
}

// ObserveOTPVerification counts an OTP verification outcome.
func ObserveOTPVerification(result string) {
	otpVerifications.WithLabelValues(result).Inc()
}

// ObserveThrottled counts a request rejected by the request limiter.
func ObserveThrottled() {
	requestsThrottled.Inc()
}

// unmatchedRoute labels requests no route matched, so scans of random paths
// share one series.
const unmatchedRoute = "unmatched"

// HTTPMetricsMiddleware instruments requests using the matched chi route
// pattern, so path parameters do not explode label cardinality.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		ObserveHTTPRequest(r.Method, route, strconv.Itoa(ww.status), time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
