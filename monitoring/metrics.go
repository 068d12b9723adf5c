package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one registry. A nil *Metrics records
// nothing, so components can be built without monitoring in tests.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec
	activeRequests      prometheus.Gauge
	errorsTotal         *prometheus.CounterVec

	authenticationAttempts *prometheus.CounterVec
	reviewsSubmitted       *prometheus.CounterVec
	reviewsModerated       *prometheus.CounterVec
	gameRating             prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		httpResponseSize: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "endpoint"},
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_requests",
				Help: "Number of requests being served",
			},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "endpoint"},
		),
		authenticationAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_attempts_total",
				Help: "Total number of authentication attempts",
			},
			[]string{"operation", "status"}, // success or failure
		),
		reviewsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviews_submitted_total",
				Help: "Reviews created or re-submitted for moderation",
			},
			[]string{"kind"},
		),
		reviewsModerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviews_moderated_total",
				Help: "Moderation decisions by resulting status",
			},
			[]string{"status", "changed"},
		),
		gameRating: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "game_rating_recomputed",
				Help:    "Game ratings produced by recomputation",
				Buckets: prometheus.LinearBuckets(0, 1, 11),
			},
		),
	}

	reg.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpResponseSize,
		m.activeRequests,
		m.errorsTotal,
		m.authenticationAttempts,
		m.reviewsSubmitted,
		m.reviewsModerated,
		m.gameRating,
	)
	return m
}

// Middleware collects metrics for each request.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		m.activeRequests.Inc()
		defer m.activeRequests.Dec()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
		m.httpResponseSize.WithLabelValues(c.Request.Method, endpoint).Observe(float64(c.Writer.Size()))

		switch {
		case status >= 500:
			m.errorsTotal.WithLabelValues("server_error", endpoint).Inc()
		case status >= 400:
			m.errorsTotal.WithLabelValues("client_error", endpoint).Inc()
		}
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	var h = promhttp.Handler()
	if m != nil {
		h = promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	}
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func (m *Metrics) AuthAttempt(operation string, success bool) {
	if m == nil {
		return
	}
	status := "failure"
	if success {
		status = "success"
	}
	m.authenticationAttempts.WithLabelValues(operation, status).Inc()
}

func (m *Metrics) ReviewSubmitted(kind string) {
	if m == nil {
		return
	}
	m.reviewsSubmitted.WithLabelValues(kind).Inc()
}

func (m *Metrics) ReviewModerated(status string, changed bool) {
	if m == nil {
		return
	}
	m.reviewsModerated.WithLabelValues(status, strconv.FormatBool(changed)).Inc()
}

func (m *Metrics) RatingRecomputed(rating float64) {
	if m == nil {
		return
	}
	m.gameRating.Observe(rating)
}
