package server

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the HTTP surface.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	AIRequestsTotal *prometheus.CounterVec
	PackCount       prometheus.Gauge
}

// NewMetrics creates and registers the server metrics. sync.Once guards
// against duplicate collector registration across server instances.
//
// Metrics:
//   - everaid_http_requests_total{method,endpoint,status}
//   - everaid_http_request_duration_seconds{method,endpoint}
//   - everaid_ai_requests_total{mode,outcome} - outcome is "upstream" or "fallback"
//   - everaid_pack_count - packs in the store as of the last full read
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "everaid_http_requests_total",
					Help: "Total HTTP requests by method, endpoint, and status",
				},
				[]string{"method", "endpoint", "status"},
			),
			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "everaid_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
				},
				[]string{"method", "endpoint"},
			),
			AIRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "everaid_ai_requests_total",
					Help: "Total AI proxy requests by mode and outcome",
				},
				[]string{"mode", "outcome"},
			),
			PackCount: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "everaid_pack_count",
					Help: "Number of packs in the store as of the last full read",
				},
			),
		}
	})
	return globalMetrics
}

// Middleware returns an Echo middleware recording request counts and
// durations. Uses the route pattern, not the raw path, so ids never
// explode metric cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			endpoint := c.Path()
			if endpoint == "" {
				endpoint = "/"
			}
			method := c.Request().Method

			m.RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(c.Response().Status)).Inc()
			m.RequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
