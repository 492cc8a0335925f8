// internal/services/forecast_writer.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/jguerrero45/dashboard-insights/internal/database"
	"github.com/jguerrero45/dashboard-insights/internal/models"
)

// ForecastCounts is the number of entries written per dimension.
type ForecastCounts struct {
	Monthly  int `json:"monthly"`
	Product  int `json:"product"`
	Category int `json:"category"`
}

func (c ForecastCounts) Total() int {
	return c.Monthly + c.Product + c.Category
}

// RunInfo describes the run record written ahead of its entries.
type RunInfo struct {
	Name      string
	Algorithm string
	Version   string
	Metadata  models.JSONB
}

type ForecastWriter struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewForecastWriter(db *gorm.DB, logger *logrus.Logger) *ForecastWriter {
	return &ForecastWriter{db: db, logger: logger}
}

// Write stores one new run and one entry per prediction in a single
// transaction. Existing runs are never touched.
func (w *ForecastWriter) Write(ctx context.Context, info RunInfo, pipelines ...PipelineResult) (*models.ForecastRun, ForecastCounts, error) {
	var counts ForecastCounts
	run := &models.ForecastRun{
		Name:      info.Name,
		Algorithm: info.Algorithm,
		Version:   info.Version,
		Metadata:  info.Metadata,
	}

	err := database.WithTransaction(w.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Omit("Entries").Create(run).Error; err != nil {
			return fmt.Errorf("failed to create forecast run: %w", err)
		}

		var entries []models.ForecastEntry
		for _, p := range pipelines {
			for _, pred := range p.Predictions {
				entries = append(entries, entryFor(run, p, pred))
			}
			switch p.Kind {
			case models.ForecastKindSalesTotal:
				counts.Monthly += len(p.Predictions)
			case models.ForecastKindDemandUnits:
				counts.Product += len(p.Predictions)
			case models.ForecastKindCategoryRevenue:
				counts.Category += len(p.Predictions)
			}
		}

		if len(entries) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(entries, 200).Error; err != nil {
			return fmt.Errorf("failed to create forecast entries: %w", err)
		}
		run.Entries = entries
		return nil
	})
	if err != nil {
		return nil, ForecastCounts{}, err
	}

	w.logger.WithFields(logrus.Fields{
		"run_id":   run.ID,
		"monthly":  counts.Monthly,
		"product":  counts.Product,
		"category": counts.Category,
	}).Info("Forecast run stored")

	return run, counts, nil
}

func entryFor(run *models.ForecastRun, p PipelineResult, pred Prediction) models.ForecastEntry {
	return models.ForecastEntry{
		RunID:       run.ID,
		Kind:        p.Kind,
		Label:       pred.Label,
		PeriodStart: pred.PeriodStart,
		ProductID:   pred.ProductID,
		Category:    pred.Category,
		Value:       pred.Value,
		Confidence:  pred.Confidence,
		Metadata: models.JSONB{
			"source": string(p.Source),
			"key":    pred.Key,
			"actual": pred.Actual,
		},
	}
}
