package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *MetricsManager) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestGinMiddleware_CountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetricsManager("service-requests")

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/v1/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := scrape(t, m)
	assert.Contains(t, body, `service_requests_http_requests_total{method="GET",route="/v1/ping",status="200"} 1`)
	assert.Contains(t, body, "service_requests_http_request_latency_seconds")
}

func TestObserve_NilManager(t *testing.T) {
	var m *MetricsManager
	m.ObserveDelivery("log", "accepted", "ok")
	m.ObserveCreated()
	m.ObserveTransition("accept", "ok")
}

func TestObserveDelivery(t *testing.T) {
	m := NewMetricsManager("svc")
	m.ObserveDelivery("nats", "new_request", "error")
	m.ObserveDelivery("nats", "new_request", "error")
	m.ObserveCreated()

	body := scrape(t, m)
	assert.Contains(t, body, `svc_notification_deliveries_total{channel="nats",kind="new_request",outcome="error"} 2`)
	assert.Contains(t, body, "svc_service_requests_created_total 1")
}
