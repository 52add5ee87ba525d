package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrobot",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "agrobot",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Mapping metrics
	MarkersAdded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrobot",
		Subsystem: "mapping",
		Name:      "markers_added_total",
		Help:      "Markers placed by tap or manual coordinate entry",
	}, []string{"source"})

	ReconcileOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrobot",
		Subsystem: "mapping",
		Name:      "reconcile_ops_total",
		Help:      "Render surface operations issued by the map bridge",
	}, []string{"op"})

	MarkerStoreOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrobot",
		Subsystem: "persistence",
		Name:      "operations_total",
		Help:      "Marker document loads and saves by result",
	}, []string{"op", "result"})

	MarkerStoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "agrobot",
		Subsystem: "persistence",
		Name:      "operation_duration_seconds",
		Help:      "Marker document load/save latency",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"op"})

	Detections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agrobot",
		Subsystem: "detection",
		Name:      "analyses_total",
		Help:      "Obstruction analyses by severity",
	}, []string{"severity", "demo"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "agrobot",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "agrobot",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "agrobot",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "agrobot",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// ObserveStoreOp records one persistence call.
func ObserveStoreOp(op, result string, start time.Time) {
	MarkerStoreOps.WithLabelValues(op, result).Inc()
	MarkerStoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}

// PoolStat is the subset of pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics updates database pool gauges.
func UpdateDBPoolMetrics(s PoolStat) {
	DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(s.IdleConns()))
	DBPoolConnsOpen.Set(float64(s.TotalConns()))
}
