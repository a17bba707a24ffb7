package api

import (
	"github.com/gin-gonic/gin"
	"github.com/leadrelay/leadrelay/internal/api/handler"
	"github.com/leadrelay/leadrelay/internal/api/middleware"
	"github.com/leadrelay/leadrelay/internal/auth"
	"github.com/leadrelay/leadrelay/internal/logger"
	"github.com/leadrelay/leadrelay/internal/repository"
	"github.com/leadrelay/leadrelay/internal/service"
)

// Deps carries everything the router needs to wire the handlers.
type Deps struct {
	Log              *logger.Logger
	TokenIssuer      *auth.TokenIssuer
	Users            *repository.UserRepository
	Leads            *repository.LeadRepository
	Events           *repository.EventRepository
	WebhookService   *service.WebhookService
	DashboardService *service.DashboardService
	Settings         *service.Settings
	CORS             middleware.CORSConfig
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(deps Deps, mode string) *gin.Engine {
	// Set Gin mode
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(deps.Log))
	r.Use(middleware.CORS(deps.CORS))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	authHandler := handler.NewAuthHandler(deps.Users, deps.TokenIssuer)
	userHandler := handler.NewUserHandler(deps.Users)
	webhookHandler := handler.NewWebhookHandler(deps.WebhookService)
	leadHandler := handler.NewLeadHandler(deps.Leads, deps.WebhookService)
	eventHandler := handler.NewEventHandler(deps.Events)
	dashboardHandler := handler.NewDashboardHandler(deps.DashboardService)
	configHandler := handler.NewConfigHandler(deps.Settings)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Auth (public)
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/token", authHandler.Token)

		// Everything else requires a bearer token
		authed := v1.Group("")
		authed.Use(middleware.RequireAuth(deps.TokenIssuer, deps.Users))
		{
			// Ingestion
			authed.POST("/webhook", webhookHandler.Receive)

			// Leads
			authed.GET("/leads", leadHandler.List)
			authed.GET("/leads/:id", leadHandler.Get)
			authed.POST("/leads/:id/retry-crm", leadHandler.RetryCRM)

			// Events
			authed.GET("/events", eventHandler.List)
			authed.GET("/events/:id", eventHandler.Get)

			// Dashboard
			authed.GET("/dashboard/stats", dashboardHandler.Stats)

			// Runtime retry configuration
			authed.GET("/config", configHandler.Get)
			authed.POST("/config/update", configHandler.Update)

			// Users
			authed.GET("/users/me", userHandler.Me)
			authed.GET("/users/:id", userHandler.Get)
		}
	}

	return r
}
