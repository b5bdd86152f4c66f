package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total number of HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "code"},
	)

	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sheet_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// ActiveRequests tracks currently active requests
	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sheet_http_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"route"},
	)

	// LoadsTotal tracks sheet load attempts by outcome
	LoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sheet_loads_total",
			Help: "Total number of sheet load attempts",
		},
		[]string{"outcome"},
	)

	// LoadDuration tracks end-to-end sheet load duration
	LoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sheet_load_duration_seconds",
			Help:    "Sheet load duration in seconds, fetch through assembly",
			Buckets: prometheus.DefBuckets,
		},
	)

	// HeaderRowIndex tracks where the header row was located
	HeaderRowIndex = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sheet_header_row_index",
			Help:    "Row index chosen as the header row",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 30},
		},
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware wraps a handler and collects Prometheus metrics per route.
func MetricsMiddleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ActiveRequests.WithLabelValues(route).Inc()
		defer ActiveRequests.WithLabelValues(route).Dec()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, req)

		RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
