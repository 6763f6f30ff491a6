package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/healthbook/booking-api/internal/middleware"
	"github.com/healthbook/booking-api/internal/model"
)

// Handler mounts a set of routes onto a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// DoctorHandler serves both the public directory and the doctor portal.
type DoctorHandler interface {
	RegisterPublicRoutes(*gin.RouterGroup)
	RegisterDoctorRoutes(*gin.RouterGroup)
}

// AppointmentHandler serves patient booking plus the doctor-side status
// update.
type AppointmentHandler interface {
	Handler
	RegisterDoctorRoutes(*gin.RouterGroup)
}

type Router struct {
	engine       *gin.Engine
	auth         *middleware.AuthMiddleware
	healthH      Handler
	authH        Handler
	doctorH      DoctorHandler
	profileH     Handler
	appointmentH AppointmentHandler
	chatH        Handler
	adminH       Handler

	metrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORS           middleware.CORSConfig
	MetricsPrefix  string
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	healthH Handler,
	authH Handler,
	doctorH DoctorHandler,
	profileH Handler,
	appointmentH AppointmentHandler,
	chatH Handler,
	adminH Handler,
	cfg Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:       engine,
		auth:         auth,
		healthH:      healthH,
		authH:        authH,
		doctorH:      doctorH,
		profileH:     profileH,
		appointmentH: appointmentH,
		chatH:        chatH,
		adminH:       adminH,
		metrics:      initRouterMetrics(cfg.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
	)

	engine.Use(middleware.CORS(cfg.CORS))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   cfg.RateLimitRPS,
		Burst: cfg.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	// Public surface: auth, the verified-doctor directory, health.
	r.healthH.RegisterRoutes(api)
	r.authH.RegisterRoutes(api)
	r.doctorH.RegisterPublicRoutes(api)

	// Any authenticated account.
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.profileH.RegisterRoutes(protected)
	r.appointmentH.RegisterRoutes(protected)
	r.chatH.RegisterRoutes(protected)

	// Doctor portal.
	doctorPortal := api.Group("")
	doctorPortal.Use(r.auth.Authenticate(), r.auth.RequireRole(model.RoleDoctor))
	r.doctorH.RegisterDoctorRoutes(doctorPortal)
	r.appointmentH.RegisterDoctorRoutes(doctorPortal)

	// Admin portal.
	adminPortal := api.Group("")
	adminPortal.Use(r.auth.Authenticate(), r.auth.RequireRole(model.RoleAdmin))
	r.adminH.RegisterRoutes(adminPortal)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
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
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
