// cmd/forecast/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jguerrero45/dashboard-insights/internal/config"
	"github.com/jguerrero45/dashboard-insights/internal/database"
	"github.com/jguerrero45/dashboard-insights/internal/llm"
	"github.com/jguerrero45/dashboard-insights/internal/logger"
	"github.com/jguerrero45/dashboard-insights/internal/repository"
	"github.com/jguerrero45/dashboard-insights/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	schedule := flag.String("schedule", cfg.Forecast.Schedule, `cron spec, e.g. "0 3 * * *"; empty runs once`)
	months := flag.Int("months", cfg.Forecast.Months, "months of monthly history to forecast")
	days := flag.Int("days", cfg.Forecast.Days, "window in days for product and category series")
	limit := flag.Int("limit", cfg.Forecast.ProductLimit, "number of products to forecast")
	name := flag.String("name", cfg.Forecast.Name, "run name")
	flag.Parse()

	log := logger.New(cfg.Log, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	gemini, err := llm.NewGeminiClient(ctx, cfg.AI, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize text generation")
	}
	defer gemini.Close()

	metrics := services.NewMetricsService(repository.NewSalesRepository(db), log)
	forecasts, err := services.NewForecastService(db, metrics, gemini, services.NewForecastWriter(db, log), cfg.Forecast, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize forecast service")
	}

	req := services.ForecastRequest{Months: *months, Days: *days, ProductLimit: *limit, Name: *name}
	run := func() {
		runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()

		result, err := forecasts.Run(runCtx, req)
		if err != nil {
			log.WithError(err).Error("Forecast run failed")
			return
		}
		log.WithFields(logrus.Fields{
			"run_id":          result.Run.ID,
			"monthly":         result.Counts.Monthly,
			"product":         result.Counts.Product,
			"category":        result.Counts.Category,
			"monthly_source":  result.Monthly.Source,
			"product_source":  result.Product.Source,
			"category_source": result.Category.Source,
		}).Info("Forecast run completed")
	}

	if *schedule == "" {
		run()
		return
	}

	cronLogger := cron.VerbosePrintfLogger(log)
	scheduler := cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)))
	if _, err := scheduler.AddFunc(*schedule, run); err != nil {
		log.WithError(err).WithField("schedule", *schedule).Error("Invalid schedule")
		os.Exit(2)
	}

	log.WithField("schedule", *schedule).Info("Forecast scheduler started")
	scheduler.Start()

	<-ctx.Done()
	log.Info("Stopping forecast scheduler...")
	<-scheduler.Stop().Done()
}
