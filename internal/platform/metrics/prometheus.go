package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry                    *prometheus.Registry
	HTTPRequestsTotal           *prometheus.CounterVec
	HTTPRequestLatency          *prometheus.HistogramVec
	ServiceRequestsCreatedTotal prometheus.Counter
	TransitionsTotal            *prometheus.CounterVec
	NotificationDeliveriesTotal *prometheus.CounterVec
}

// NewMetricsManager registers all collectors on a dedicated registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()
	namespace := sanitizeNamespace(serviceName)

	httpRequestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_latency_seconds",
		Help:      "Latency of HTTP requests by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	created := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "service_requests_created_total",
		Help:      "Total number of service requests created.",
	})

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "service_request_transitions_total",
		Help:      "Total number of lifecycle transitions attempted, by event and result kind.",
	}, []string{"event", "result"})

	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_deliveries_total",
		Help:      "Total number of notification deliveries by channel, kind and outcome.",
	}, []string{"channel", "kind", "outcome"})

	registry.MustRegister(
		httpRequestsTotal,
		httpRequestLatency,
		created,
		transitions,
		deliveries,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:                    registry,
		HTTPRequestsTotal:           httpRequestsTotal,
		HTTPRequestLatency:          httpRequestLatency,
		ServiceRequestsCreatedTotal: created,
		TransitionsTotal:            transitions,
		NotificationDeliveriesTotal: deliveries,
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records count and latency for every request.
func (m *MetricsManager) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveDelivery counts one notification delivery. Safe on a nil manager.
func (m *MetricsManager) ObserveDelivery(channel, kind, outcome string) {
	if m == nil {
		return
	}
	m.NotificationDeliveriesTotal.WithLabelValues(channel, kind, outcome).Inc()
}

// ObserveCreated counts one created service request. Safe on a nil manager.
func (m *MetricsManager) ObserveCreated() {
	if m == nil {
		return
	}
	m.ServiceRequestsCreatedTotal.Inc()
}

// ObserveTransition counts one transition attempt. Safe on a nil manager.
func (m *MetricsManager) ObserveTransition(event, result string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(event, result).Inc()
}

func sanitizeNamespace(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
