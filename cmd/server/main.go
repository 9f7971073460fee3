package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hpatel/profilesync-backend/config"
	"github.com/hpatel/profilesync-backend/internal/app/controller"
	"github.com/hpatel/profilesync-backend/internal/app/repository"
	"github.com/hpatel/profilesync-backend/internal/app/service"
	"github.com/hpatel/profilesync-backend/internal/db"
	"github.com/hpatel/profilesync-backend/internal/middleware"
	"github.com/hpatel/profilesync-backend/internal/router"
	"github.com/hpatel/profilesync-backend/internal/scheduler"
	"github.com/hpatel/profilesync-backend/internal/websocket"
	"github.com/hpatel/profilesync-backend/pkg/logger"
	"github.com/hpatel/profilesync-backend/pkg/profileapi"
	redispkg "github.com/hpatel/profilesync-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting profile sync server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize redis
	if err := redispkg.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to connect to redis", err)
	}
	defer func() {
		if err := redispkg.Close(); err != nil {
			logger.Error("Failed to close redis connection", err)
		}
	}()

	// Upstream API client
	apiClient, err := profileapi.NewClient(profileapi.Config{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
	})
	if err != nil {
		logger.Fatal("Failed to create upstream API client", err)
	}

	// WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize repositories
	profileRepo := repository.NewProfileRepository(apiClient, cfg.Sync.ProfileCacheTTL)
	identityStore := repository.NewIdentityStore(redispkg.GetClient())
	draftStore := repository.NewDraftStore(redispkg.GetClient())
	transactionRepo := repository.NewTransactionRepository(db.GetDB())

	// Initialize services
	reconcilerService := service.NewReconcilerService(profileRepo, identityStore)
	transactionService := service.NewTransactionService(transactionRepo)
	identityService := service.NewIdentityService(identityStore, profileRepo)
	profileService := service.NewProfileService(profileRepo, hub)
	pendingService := service.NewPendingCreationService(
		draftStore,
		identityStore,
		profileRepo,
		apiClient,
		transactionService,
		hub,
		cfg.Payment.Razorpay,
	)

	// Scheduler: reconciliation entry points plus the draft recovery loop
	syncScheduler := scheduler.NewSyncScheduler(
		cfg.Sync.DraftPollSpec,
		cfg.Sync.ResumeDebounce,
		reconcilerService,
		pendingService,
		profileRepo,
		identityStore,
		draftStore,
	)
	if err := syncScheduler.Start(); err != nil {
		logger.Fatal("Failed to start sync scheduler", err)
	}
	defer syncScheduler.Stop()

	// Initialize controllers
	profileController := controller.NewProfileController(profileService, pendingService, syncScheduler)
	paymentController := controller.NewPaymentController(pendingService, syncScheduler)
	identityController := controller.NewIdentityController(identityService)
	transactionController := controller.NewTransactionController(transactionService)
	wsController := controller.NewWSController(hub)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		profileController,
		paymentController,
		identityController,
		transactionController,
		wsController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
