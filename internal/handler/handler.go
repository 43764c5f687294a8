package handler

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves health and metrics endpoints.
type Handler struct {
	metrics http.Handler
	ready   atomic.Bool
}

// NewHandler creates a new handler instance
func NewHandler(gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		metrics: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
}

// SetReady marks the seed dataset as loaded.
func (h *Handler) SetReady() {
	h.ready.Store(true)
}

// Ready reports whether the seed dataset has been loaded.
func (h *Handler) Ready() bool {
	return h.ready.Load()
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
		"time":   time.Now(),
	})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	if !h.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "loading",
			"time":   time.Now(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now(),
	})
}

func (h *Handler) MetricsHandler(c *gin.Context) {
	h.metrics.ServeHTTP(c.Writer, c.Request)
}
