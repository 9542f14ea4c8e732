package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kestrel-hq/kestrel/internal/auth"
	"github.com/kestrel-hq/kestrel/internal/config"
	"github.com/kestrel-hq/kestrel/internal/database"
	"github.com/kestrel-hq/kestrel/internal/dispatch"
	"github.com/kestrel-hq/kestrel/internal/handler"
	"github.com/kestrel-hq/kestrel/internal/retention"
	"github.com/kestrel-hq/kestrel/internal/service"
	"github.com/kestrel-hq/kestrel/pkg/middleware"
)

const version = "1.0.0"

func main() {
	// Load local env file if present, then configuration
	_ = godotenv.Load()
	cfg := config.Load()

	config.InitLogger(cfg)

	slog.Info("Starting Kestrel Webhook Automation Service", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to MongoDB
	db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout)
	if err != nil {
		slog.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			slog.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()

	if err := database.CreateIndexes(ctx, db); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	webhookRepo := database.NewWebhookRepository(db)
	ruleRepo := database.NewRuleRepository(db)
	logRepo := database.NewLogRepository(db)
	tokenRepo := database.NewTokenRepository(db)
	roleRepo := database.NewRoleRepository(db)
	lockRepo := database.NewLockRepository(db)

	// Initialize collaborators and services
	guard := auth.NewGuard(tokenRepo, roleRepo)
	dispatcher := dispatch.NewDispatcher(cfg.ProjectID, cfg.ReceiverHost, cfg.DispatchTimeout)
	testService := service.NewTestService(guard, webhookRepo, ruleRepo, logRepo, dispatcher)
	logService := service.NewLogService(guard, logRepo)

	// Initialize retention sweeper
	sweeper, err := retention.NewSweeper(cfg, logRepo, lockRepo)
	if err != nil {
		slog.Error("Failed to initialize retention sweeper", "error", err)
		os.Exit(1)
	}
	sweeper.Start(ctx)

	// Initialize handlers
	testHandler := handler.NewTestHandler(testService)
	logHandler := handler.NewLogHandler(logService)
	healthHandler := handler.NewHealthHandler(db, version)

	corsConfig := middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           cfg.CORSMaxAge,
	}

	router := handler.NewRouter(testHandler, logHandler, healthHandler, corsConfig)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Handler(),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	go func() {
		slog.Info("Starting HTTP server", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("Received shutdown signal, initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	slog.Info("Stopping retention sweeper...")
	sweeper.Stop(shutdownCtx)

	slog.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Kestrel Webhook Automation Service stopped")
}
