package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-table/internal/handler"
	patienthandler "github.com/jwalitptl/patient-table/internal/handler/patient"
	"github.com/jwalitptl/patient-table/internal/middleware"
	"github.com/jwalitptl/patient-table/internal/model"
	"github.com/jwalitptl/patient-table/internal/service/patient"
)

// newTestRouter returns a router whose seed dataset is already loaded.
func newTestRouter(t *testing.T, cfg RouterConfig) (*Router, *handler.Handler) {
	t.Helper()
	r, h, _ := newLoadingRouter(t, cfg)
	h.SetReady()
	return r, h
}

func newLoadingRouter(t *testing.T, cfg RouterConfig) (*Router, *handler.Handler, *patient.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := prometheus.NewRegistry()
	store := patient.NewStore()
	store.Initialize([]model.Patient{{ID: "1", FirstName: "Ann", Sex: "F"}})

	h := handler.NewHandler(registry)
	r := NewRouter(h, patienthandler.NewHandler(store, nil), registry, zerolog.Nop(), cfg)
	r.Setup()
	return r, h, store
}

func defaultConfig() RouterConfig {
	return RouterConfig{
		CORSConfig:     middleware.DefaultCORSConfig(),
		Security:       middleware.DefaultSecurityConfig(),
		SizeLimit:      middleware.DefaultSizeLimitConfig(),
		MetricsPrefix:  "patients_http",
		MetricsEnabled: true,
		MetricsPath:    "/metrics",
	}
}

func serve(r *Router, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)
	return w
}

func TestRouter_HealthChecks(t *testing.T) {
	r, h, _ := newLoadingRouter(t, defaultConfig())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h.SetReady()
	w = serve(r, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_PatientRoutesAndHeaders(t *testing.T) {
	r, _ := newTestRouter(t, defaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set(middleware.HeaderXRequestID, "req-123")
	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(middleware.HeaderXRequestID))
	assert.Equal(t, "1.0", w.Header().Get("X-API-Version"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Body.String(), `"first_name":"Ann"`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderXRequestID))
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, defaultConfig())

	serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `patients_http_requests_total{method="GET",path="/api/v1/patients",status="200"} 1`)
	assert.Contains(t, body, `patients_http_errors_total{method="GET",path="unmatched",type="client"} 1`)
}

func TestRouter_MetricsDisabled(t *testing.T) {
	cfg := defaultConfig()
	cfg.MetricsEnabled = false
	r, _ := newTestRouter(t, cfg)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CORS(t *testing.T) {
	cfg := defaultConfig()
	cfg.CORSConfig.AllowOrigins = []string{"http://localhost:3000"}
	r, _ := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/patients", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/patients", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := defaultConfig()
	cfg.RateLimit = &middleware.RateLimiterConfig{RPS: 0.001, Burst: 2}
	r, _ := newTestRouter(t, cfg)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_SizeLimit(t *testing.T) {
	cfg := defaultConfig()
	cfg.SizeLimit = middleware.SizeLimitConfig{MaxBodySize: 16}
	r, _ := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/search", strings.NewReader(`{"term":"a very long search term"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRouter_RecoversFromPanics(t *testing.T) {
	r, _ := newTestRouter(t, defaultConfig())
	r.Engine().GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestRouter_APIUnavailableUntilReady(t *testing.T) {
	r, h, store := newLoadingRouter(t, defaultConfig())

	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/draft/toggle", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.False(t, store.Adding())
	_, hasDraft := store.Draft()
	assert.False(t, hasDraft)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h.SetReady()
	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/draft/toggle", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.Adding())
}

func TestRouter_RequestIDSanitized(t *testing.T) {
	r, _ := newTestRouter(t, defaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	req.Header.Set(middleware.HeaderXRequestID, strings.Repeat("x", 100))
	w := serve(r, req)

	rid := w.Header().Get(middleware.HeaderXRequestID)
	assert.NotEqual(t, strings.Repeat("x", 100), rid)
	assert.Len(t, rid, 36)
}
