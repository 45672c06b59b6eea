package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/vivispa/catalog-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AdminHandler is a Handler with routes that must never be cached or rate limited.
type AdminHandler interface {
	Handler
	RegisterAdminRoutes(*gin.RouterGroup)
}

type Router struct {
	engine    *gin.Engine
	catalogH  AdminHandler
	healthH   Handler
	config    RouterConfig
	metrics   *routerMetrics
	limiter   *middleware.RateLimiter
	validator middleware.ValidationConfig
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	Mode             string
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	CacheConfig      middleware.CacheConfig
	MetricsPrefix    string
	Registerer       prometheus.Registerer
}

func NewRouter(catalogH AdminHandler, healthH Handler, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.MetricsPrefix == "" {
		config.MetricsPrefix = "http"
	}
	if config.Registerer == nil {
		config.Registerer = prometheus.NewRegistry()
	}

	engine := gin.New() // Use New() instead of Default() for more control

	r := &Router{
		engine:    engine,
		catalogH:  catalogH,
		healthH:   healthH,
		config:    config,
		metrics:   initRouterMetrics(config.Registerer, config.MetricsPrefix),
		validator: middleware.DefaultValidationConfig(),
	}
	if config.RateLimitEnabled {
		r.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
	}

	// Add core middlewares
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
		middleware.ErrorHandler(),
		middleware.Validation(r.validator),
	)

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	// Add version header
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.healthH.RegisterRoutes(api.Group("", middleware.NoStore()))
	r.catalogH.RegisterAdminRoutes(api.Group("", middleware.NoStore()))

	public := api.Group("")
	if r.limiter != nil {
		public.Use(r.limiter.RateLimit())
	}
	public.Use(middleware.Cache(r.config.CacheConfig))
	r.catalogH.RegisterRoutes(public)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Metrics initialization and middleware
func initRouterMetrics(reg prometheus.Registerer, prefix string) *routerMetrics {
	factory := promauto.With(reg)
	return &routerMetrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Unmatched paths share one label to keep cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := c.Writer.Status()
		status := strconv.Itoa(code)

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		switch {
		case code >= 500:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		case code >= 400:
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
