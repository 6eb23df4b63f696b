package echoutil

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics observes request counts and latencies per route and exposes
// them on /metrics.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func NewMetrics(service string) *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "awhina",
			Subsystem: service,
			Name:      "http_requests_total",
			Help:      "Requests served, by route and status code.",
		},
		[]string{"method", "route", "code"},
	)
	latency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "awhina",
			Subsystem: service,
			Name:      "http_request_duration_seconds",
			Help:      "Request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	registry.MustRegister(requests, latency)
	return &Metrics{registry: registry, requests: requests, latency: latency}
}

func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			begin := time.Now()
			err := next(c)

			route := c.Path()
			method := c.Request().Method
			m.latency.WithLabelValues(method, route).Observe(time.Since(begin).Seconds())
			m.requests.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			return err
		}
	}
}

// Mount registers the /metrics endpoint.
func (m *Metrics) Mount(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}),
	))
}
