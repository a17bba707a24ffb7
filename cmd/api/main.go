package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leadrelay/leadrelay/internal/api"
	"github.com/leadrelay/leadrelay/internal/api/middleware"
	"github.com/leadrelay/leadrelay/internal/auth"
	"github.com/leadrelay/leadrelay/internal/config"
	"github.com/leadrelay/leadrelay/internal/logger"
	"github.com/leadrelay/leadrelay/internal/repository"
	"github.com/leadrelay/leadrelay/internal/service"
	"github.com/leadrelay/leadrelay/internal/storage"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger := logger.NewFromEnv(nil)
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	ctx := context.Background()

	// Initialize database
	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)

	// Extraction: LLM primary with regex fallback, or regex only
	extractor := service.NewLeadExtractor(&service.LLMExtractorConfig{
		Enabled: cfg.Extractor.Enabled,
		Model:   cfg.Extractor.Model,
		APIKey:  cfg.Extractor.APIKey,
		BaseURL: cfg.Extractor.BaseURL,
	})

	// CRM delivery gateway
	var gateway service.DeliveryGateway
	switch cfg.CRM.Mode {
	case "http":
		gateway = service.NewHTTPGateway(&service.HTTPGatewayConfig{
			Endpoint: cfg.CRM.Endpoint,
			APIKey:   cfg.CRM.APIKey,
		})
		appLogger.Infof("CRM delivery: http gateway, endpoint=%s", cfg.CRM.Endpoint)
	default:
		gateway = service.NewSimulatedGateway(cfg.CRM.SuccessRate)
		appLogger.Infof("CRM delivery: simulated gateway, success_rate=%.2f", cfg.CRM.SuccessRate)
	}

	retryEngine := service.NewRetryEngine(leadRepo, attemptRepo, gateway)
	settings := service.NewSettings(cfg.CRM.MaxRetries, cfg.CRM.RetryDelay)

	// Optional payload archive
	var archive service.PayloadArchiver
	if cfg.Archive.Enabled {
		objectStorage, err := storage.NewS3Storage(&storage.S3Config{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			UseSSL:    cfg.Archive.UseSSL,
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
		})
		if err != nil {
			appLogger.Fatalf("Failed to initialize archive storage: %v", err)
		}
		if err := objectStorage.EnsureBucket(ctx); err != nil {
			appLogger.Fatalf("Failed to ensure archive bucket: %v", err)
		}
		archive = storage.NewPayloadArchive(objectStorage)
		appLogger.Infof("Payload archive enabled: bucket=%s", cfg.Archive.Bucket)
	}

	// Initialize services
	webhookService := service.NewWebhookService(
		extractor,
		eventRepo,
		leadRepo,
		retryEngine,
		settings,
		archive,
	)
	dashboardService := service.NewDashboardService(leadRepo, attemptRepo, eventRepo)

	tokenIssuer := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenExpiry)

	// Setup router
	router := api.SetupRouter(api.Deps{
		Log:              appLogger,
		TokenIssuer:      tokenIssuer,
		Users:            userRepo,
		Leads:            leadRepo,
		Events:           eventRepo,
		WebhookService:   webhookService,
		DashboardService: dashboardService,
		Settings:         settings,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
	}, cfg.Server.Mode)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.Infof("Starting API server: port=%d, mode=%s", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Infof("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Infof("Server exited")
}
