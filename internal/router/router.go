// internal/router/router.go
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/jguerrero45/dashboard-insights/internal/config"
	"github.com/jguerrero45/dashboard-insights/internal/handlers"
	"github.com/jguerrero45/dashboard-insights/internal/i18n"
	"github.com/jguerrero45/dashboard-insights/internal/llm"
	"github.com/jguerrero45/dashboard-insights/internal/middleware"
	"github.com/jguerrero45/dashboard-insights/internal/repository"
	"github.com/jguerrero45/dashboard-insights/internal/services"
	"github.com/jguerrero45/dashboard-insights/internal/utils"
)

const version = "1.0.0"

// Dependencies are built by the caller so tests can swap the generator and
// the rotation counter.
type Dependencies struct {
	DB        *gorm.DB
	Config    *config.Config
	Generator llm.TextGenerator
	Rotation  services.RotationSource
	Logger    *logrus.Logger
}

func Initialize(ctx context.Context, deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config

	// Initialize services
	salesRepository := repository.NewSalesRepository(deps.DB)
	metricsService := services.NewMetricsService(salesRepository, deps.Logger)
	forecastWriter := services.NewForecastWriter(deps.DB, deps.Logger)

	recommendationService, err := services.NewRecommendationService(deps.DB, metricsService, deps.Generator, deps.Rotation, cfg.Insights, deps.Logger)
	if err != nil {
		return nil, err
	}
	forecastService, err := services.NewForecastService(deps.DB, metricsService, deps.Generator, forecastWriter, cfg.Forecast, deps.Logger)
	if err != nil {
		return nil, err
	}

	// Initialize handlers
	recommendationHandler := handlers.NewRecommendationHandler(recommendationService)
	metricsHandler := handlers.NewMetricsHandler(metricsService, cfg.Forecast)
	forecastHandler := handlers.NewForecastHandler(forecastService)

	limiters := middleware.NewLimiters(cfg.RateLimit)
	limiters.StartCleanup(ctx)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS(cfg.Server.AllowOrigins))
	r.Use(limiters.General.Middleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		database := "up"
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			database = "down"
		}
		c.JSON(status, gin.H{
			"status":   i18n.T(utils.GetLangFromContext(c), i18n.KeyHealthy),
			"version":  version,
			"database": database,
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		recommendations := v1.Group("/recommendations")
		{
			recommendations.POST("", limiters.AI.Middleware(), recommendationHandler.Generate)
			recommendations.GET("", recommendationHandler.List)
		}

		metrics := v1.Group("/metrics")
		{
			metrics.GET("/products", metricsHandler.Products)
			metrics.GET("/structured", metricsHandler.Structured)
		}

		forecasts := v1.Group("/forecasts")
		{
			forecasts.POST("", limiters.AI.Middleware(), forecastHandler.Run)
			forecasts.GET("/runs", forecastHandler.ListRuns)
			forecasts.GET("/runs/:id", forecastHandler.GetRun)
			forecasts.GET("/runs/:id/comparison", forecastHandler.Compare)
		}
	}

	return r, nil
}
