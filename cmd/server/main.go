// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jguerrero45/dashboard-insights/internal/cache"
	"github.com/jguerrero45/dashboard-insights/internal/config"
	"github.com/jguerrero45/dashboard-insights/internal/database"
	"github.com/jguerrero45/dashboard-insights/internal/i18n"
	"github.com/jguerrero45/dashboard-insights/internal/llm"
	"github.com/jguerrero45/dashboard-insights/internal/logger"
	"github.com/jguerrero45/dashboard-insights/internal/router"
	"github.com/jguerrero45/dashboard-insights/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logger.New(cfg.Log, cfg.IsProduction())

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	if cfg.Database.Seed {
		if err := database.SeedDemoData(db, time.Now().UTC()); err != nil {
			log.WithError(err).Fatal("Failed to seed demo data")
		}
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		log.WithError(err).Fatal("Failed to initialize i18n")
	}

	// Text generation is required; a missing key stops startup
	gemini, err := llm.NewGeminiClient(ctx, cfg.AI, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize text generation")
	}
	defer gemini.Close()

	var rotation services.RotationSource = cache.NewMemoryRotation()
	if cfg.Redis.Enabled {
		client, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, using in-process rotation counter")
		} else {
			defer client.Close()
			rotation = cache.NewRedisRotation(client, cfg.Redis.RotationKey)
		}
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r, err := router.Initialize(ctx, router.Dependencies{
		DB:        db,
		Config:    cfg,
		Generator: gemini,
		Rotation:  rotation,
		Logger:    log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize router")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	stop()

	// Create a deadline for shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server exited")
}
