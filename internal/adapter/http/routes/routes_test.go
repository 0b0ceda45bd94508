package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contacto_profesionales/internal/adapter/http/handlers"
	"contacto_profesionales/internal/adapter/http/middleware"
	"contacto_profesionales/internal/config"
	"contacto_profesionales/internal/platform/logger"
	"contacto_profesionales/internal/platform/metrics"
	"contacto_profesionales/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "routes-test-secret"

func newTestEngine(t *testing.T) (*gin.Engine, *metrics.MetricsManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		ServiceName:     "service-requests",
		StorageDriver:   config.DriverSQLite,
		SQLitePath:      ":memory:",
		NotifyTimeout:   time.Second,
		ServiceTimezone: "America/Lima",
	}
	require.NoError(t, cfg.Validate())
	log := logger.NewNop()
	m := metrics.NewMetricsManager(cfg.ServiceName)

	deps, err := buildDependencies(context.Background(), cfg, log, m)
	require.NoError(t, err)
	t.Cleanup(deps.Close)
	assert.Equal(t, []string{"log"}, deps.Notifier.Channels())

	engine := gin.New()
	setMiddlewares(engine, log, m)
	loc := cfg.Location()
	uc := usecase.NewServiceRequestUseCase(deps.Repository, deps.Notifier, log).WithLocation(loc)
	getRoutes(engine, handlers.NewServiceRequestHandler(uc, m).WithLocation(loc), middleware.JWTAuth(testJWTSecret, log))
	return engine, m
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{UserID: userID, Role: role}).
		SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func call(engine *gin.Engine, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := call(engine, http.MethodGet, "/v1/ping", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestServiceRequestRoutes_RequireToken(t *testing.T) {
	engine, _ := newTestEngine(t)

	w := call(engine, http.MethodGet, "/v1/professionals/2/service-requests", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServiceRequestRoutes_Lifecycle(t *testing.T) {
	engine, m := newTestEngine(t)
	client := bearer(t, "1", "client")
	professional := bearer(t, "2", "professional")
	lima, err := time.LoadLocation("America/Lima")
	require.NoError(t, err)
	tomorrow := time.Now().In(lima).AddDate(0, 0, 1).Format("2006-01-02")

	body := `{"professional_id":2,"description":"Fix leak","address":"Rua A, 10","district":"Centro","service_date":"` + tomorrow + `"}`
	w := call(engine, http.MethodPost, "/v1/service-requests", client, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID              string   `json:"id"`
		State           string   `json:"state"`
		AvailableEvents []string `json:"available_events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "pending", created.State)
	assert.Equal(t, []string{"accept", "reject", "cancel"}, created.AvailableEvents)

	w = call(engine, http.MethodPost, "/v1/service-requests", client, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(engine, http.MethodGet, "/v1/professionals/2/service-requests/pending/count", professional, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"professional_id":2,"pending":1}`, w.Body.String())

	w = call(engine, http.MethodPatch, "/v1/service-requests/"+created.ID+"/complete", professional, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(engine, http.MethodPatch, "/v1/service-requests/"+created.ID+"/accept", client, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(engine, http.MethodPatch, "/v1/service-requests/"+created.ID+"/accept", professional, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(engine, http.MethodPatch, "/v1/service-requests/"+created.ID+"/complete", professional, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(engine, http.MethodGet, "/v1/service-requests/"+created.ID, client, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"state":"completed"`)

	w = call(engine, http.MethodGet, "/v1/service-requests/"+created.ID, bearer(t, "3", "client"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(engine, http.MethodGet, "/v1/clients/1/service-requests", client, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `service_requests_service_requests_created_total 1`)
}
