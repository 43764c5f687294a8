package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/patient-table/internal/handler"
	"github.com/jwalitptl/patient-table/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	h        *handler.Handler
	patientH Handler
	config   RouterConfig
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	// RateLimit is nil when rate limiting is disabled.
	RateLimit      *middleware.RateLimiterConfig
	CORSConfig     middleware.CORSConfig
	Security       middleware.SecurityConfig
	SizeLimit      middleware.SizeLimitConfig
	MetricsPrefix  string
	MetricsEnabled bool
	MetricsPath    string
}

func NewRouter(
	h *handler.Handler,
	patientH Handler,
	registerer prometheus.Registerer,
	log zerolog.Logger,
	config RouterConfig,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		h:        h,
		patientH: patientH,
		config:   config,
		metrics:  initRouterMetrics(registerer, config.MetricsPrefix),
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
		r.metricsMiddleware(),
		middleware.CORS(config.CORSConfig),
		middleware.SecurityHeaders(config.Security),
		middleware.SizeLimit(config.SizeLimit),
	)

	if config.RateLimit != nil {
		rateLimiter := middleware.NewRateLimiter(*config.RateLimit)
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.setupHealthCheck(r.engine.Group("/health"))

	if r.config.MetricsEnabled {
		r.engine.GET(r.config.MetricsPath, r.h.MetricsHandler)
	}

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	}, middleware.RequireReady(r.h.Ready))
	r.patientH.RegisterRoutes(api)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	rg.GET("/live", r.h.LivenessCheck)
	rg.GET("/ready", r.h.ReadinessCheck)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(registerer prometheus.Registerer, prefix string) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
	registerer.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 500 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		} else if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
