package http

import (
	"time"

	"workflow_api/internal/http/handlers"
	"workflow_api/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Limits struct {
	AuthRateLimit  int
	AuthRateWindow time.Duration
	APIRateLimit   int
	APIRateWindow  time.Duration
}

type Deps struct {
	Handler     *handlers.Handler
	Health      *handlers.HealthHandler
	Verifier    middleware.TokenVerifier
	Limiter     middleware.Limiter
	Limits      Limits
	CORSOrigins []string
}

// NewRouter builds the engine with the global middleware chain and routes.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics(), middleware.CORS(d.CORSOrigins))
	RegisterRoutes(r, d)
	return r
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := d.Handler

	// Health checks (no rate limiting)
	if d.Health != nil {
		r.GET("/health", d.Health.Health)
		r.GET("/healthz", d.Health.Liveness)
		r.GET("/readyz", d.Health.Readiness)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.RateLimit(d.Limiter, "api", d.Limits.APIRateLimit, d.Limits.APIRateWindow))

	authRL := middleware.RateLimit(d.Limiter, "auth", d.Limits.AuthRateLimit, d.Limits.AuthRateWindow)
	jwt := middleware.JWT(d.Verifier)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authRL, h.Register)
		auth.POST("/login", authRL, h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", jwt, h.Me)
	}

	clients := api.Group("/clients", jwt)
	{
		clients.GET("", h.ListClients)
		clients.POST("", h.CreateClient)
		clients.GET("/:id", h.GetClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
		clients.GET("/:id/tasks", h.ClientTasks)
	}

	tasks := api.Group("/tasks", jwt)
	{
		tasks.POST("", h.CreateTask)
		tasks.GET("", h.ListTasks)
		tasks.GET("/:id", h.GetTask)
		tasks.PATCH("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}

	dashboard := api.Group("/dashboard", jwt)
	{
		dashboard.GET("/stats", h.DashboardStats)
		dashboard.GET("/upcoming", h.Upcoming)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"message": "Not found"})
	})
}
