package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vivispa/catalog-api/internal/repository"
)

// ReadyChecker reports whether a catalog snapshot is being served.
type ReadyChecker interface {
	Ready() bool
}

type Handler struct {
	service  ReadyChecker
	pingers  map[string]repository.Pinger
	gatherer prometheus.Gatherer
	timeout  time.Duration
}

// NewHandler builds health endpoints. pingers are dependencies checked on
// readiness, keyed by the name reported when they fail.
func NewHandler(service ReadyChecker, gatherer prometheus.Gatherer, pingers map[string]repository.Pinger) *Handler {
	return &Handler{
		service:  service,
		pingers:  pingers,
		gatherer: gatherer,
		timeout:  2 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("/live", h.LivenessCheck)
		health.GET("/ready", h.ReadinessCheck)
		health.GET("/metrics", h.MetricsHandler())
	}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	if !h.service.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "DOWN",
			"reason": "Catalog not loaded",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	for name, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "DOWN",
				"reason": name + " connection failed",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *Handler) MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}
