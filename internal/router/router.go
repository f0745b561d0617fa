package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/cupos-admin/internal/handler"
	"github.com/jwalitptl/cupos-admin/internal/handler/health"
	"github.com/jwalitptl/cupos-admin/internal/handler/prometheus"
	"github.com/jwalitptl/cupos-admin/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	health   *health.Handler
	metrics  *prometheus.Handler
	handlers []Handler
}

type RouterConfig struct {
	Mode             string
	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	CORSConfig       middleware.CORSConfig
	MaxBodyBytes     int64
	Compress         bool
	RequestTimeout   time.Duration
	HSTS             bool
}

// NewRouter builds the engine and its middleware chain. Routes are added by Setup.
func NewRouter(healthH *health.Handler, metricsH *prometheus.Handler, config RouterConfig, handlers ...Handler) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	r := &Router{
		engine:   engine,
		health:   healthH,
		metrics:  metricsH,
		handlers: handlers,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		metricsH.Middleware(),
		middleware.SecurityHeaders(middleware.SecurityConfig{
			HSTS:       config.HSTS,
			HSTSMaxAge: middleware.DefaultSecurityConfig().HSTSMaxAge,
		}),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	timeout := middleware.DefaultTimeoutConfig()
	timeout.Duration = config.RequestTimeout
	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}
	engine.Use(
		middleware.Timeout(timeout),
		middleware.SizeLimit(sizeLimit),
	)
	if config.Compress {
		engine.Use(middleware.Compress(middleware.DefaultCompressConfig()))
	}
	engine.Use(middleware.ErrorHandler())

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.ErrorResponse{Error: "not found"})
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handler.ErrorResponse{Error: "method not allowed"})
	})

	return r
}

func (r *Router) Setup() {
	r.health.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group("/api")
	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
