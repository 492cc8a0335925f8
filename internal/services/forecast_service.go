// internal/services/forecast_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/jguerrero45/dashboard-insights/internal/config"
	"github.com/jguerrero45/dashboard-insights/internal/llm"
	"github.com/jguerrero45/dashboard-insights/internal/models"
	"github.com/jguerrero45/dashboard-insights/internal/utils"
)

var ErrRunNotFound = errors.New("forecast run not found")

// Prediction is one forecast value aligned with a point of the real series.
type Prediction struct {
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	ProductID   *uint      `json:"product_id,omitempty"`
	Category    string     `json:"category,omitempty"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	Actual      float64    `json:"actual"`
	Value       float64    `json:"value"`
	Confidence  *int       `json:"confidence,omitempty"`
}

type PipelineResult struct {
	Kind        models.ForecastKind   `json:"kind"`
	Source      models.ForecastSource `json:"source"`
	Predictions []Prediction          `json:"predictions"`
}

type ForecastRequest struct {
	Months       int    `json:"months" validate:"omitempty,min=2,max=36"`
	Days         int    `json:"days" validate:"omitempty,min=7,max=365"`
	ProductLimit int    `json:"product_limit" validate:"omitempty,min=1,max=100"`
	Name         string `json:"name" validate:"omitempty,max=120"`
}

type ForecastResult struct {
	Run      *models.ForecastRun `json:"run"`
	Counts   ForecastCounts      `json:"counts"`
	Monthly  PipelineResult      `json:"monthly"`
	Product  PipelineResult      `json:"product"`
	Category PipelineResult      `json:"category"`
}

// ComparisonPoint pairs a stored monthly prediction with the current actual
// value of the same month.
type ComparisonPoint struct {
	Label       string     `json:"label"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	Predicted   float64    `json:"predicted"`
	Actual      float64    `json:"actual"`
	Delta       float64    `json:"delta"`
	ErrorPct    *float64   `json:"error_pct"`
	Source      string     `json:"source"`
}

type ForecastService struct {
	db        *gorm.DB
	metrics   *MetricsService
	generator llm.TextGenerator
	writer    *ForecastWriter
	cfg       config.ForecastConfig
	logger    *logrus.Logger
}

func NewForecastService(db *gorm.DB, metrics *MetricsService, generator llm.TextGenerator, writer *ForecastWriter, cfg config.ForecastConfig, logger *logrus.Logger) (*ForecastService, error) {
	if generator == nil {
		return nil, &llm.ConfigurationError{Setting: "text generator"}
	}
	return &ForecastService{
		db:        db,
		metrics:   metrics,
		generator: generator,
		writer:    writer,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// seriesSpec binds one pipeline to its real-data series.
type seriesSpec struct {
	kind      models.ForecastKind
	keyField  string
	unit      string
	heuristic func([]float64) []float64
}

var (
	monthlySpec = seriesSpec{
		kind:      models.ForecastKindSalesTotal,
		keyField:  "label",
		unit:      "revenue per month",
		heuristic: MonthlyHeuristic,
	}
	productSpec = seriesSpec{
		kind:      models.ForecastKindDemandUnits,
		keyField:  "id",
		unit:      "units sold per product in the next period",
		heuristic: ProductHeuristic,
	}
	categorySpec = seriesSpec{
		kind:      models.ForecastKindCategoryRevenue,
		keyField:  "category",
		unit:      "revenue per category in the next period",
		heuristic: CategoryHeuristic,
	}
)

// Run builds the three real-data series, predicts each one and stores the
// result as a new run. Model failures of any kind fall back to heuristics.
func (s *ForecastService) Run(ctx context.Context, req ForecastRequest) (*ForecastResult, error) {
	months := firstPositive(req.Months, s.cfg.Months)
	days := firstPositive(req.Days, s.cfg.Days)
	limit := firstPositive(req.ProductLimit, s.cfg.ProductLimit)

	monthly, err := s.metrics.StructuredMonthly(ctx, MetricRevenue, months)
	if err != nil {
		return nil, fmt.Errorf("monthly series: %w", err)
	}
	products, err := s.metrics.StructuredByProduct(ctx, MetricUnits, days, limit)
	if err != nil {
		return nil, fmt.Errorf("product series: %w", err)
	}
	categories, err := s.metrics.StructuredByCategory(ctx, MetricRevenue, days)
	if err != nil {
		return nil, fmt.Errorf("category series: %w", err)
	}

	result := &ForecastResult{
		Monthly:  s.runPipeline(ctx, monthlySpec, monthly.Items),
		Product:  s.runPipeline(ctx, productSpec, products.Items),
		Category: s.runPipeline(ctx, categorySpec, categories.Items),
	}

	name := req.Name
	if name == "" {
		name = s.cfg.Name
	}
	info := RunInfo{
		Name:      name,
		Algorithm: s.cfg.Algorithm,
		Version:   s.cfg.Version,
		Metadata: models.JSONB{
			"months":          months,
			"days":            days,
			"product_limit":   limit,
			"monthly_source":  string(result.Monthly.Source),
			"product_source":  string(result.Product.Source),
			"category_source": string(result.Category.Source),
		},
	}

	run, counts, err := s.writer.Write(ctx, info, result.Monthly, result.Product, result.Category)
	if err != nil {
		return nil, err
	}
	result.Run = run
	result.Counts = counts
	return result, nil
}

// runPipeline asks the model for one prediction per series point and falls
// back to the heuristic when the call fails or the answer does not align.
func (s *ForecastService) runPipeline(ctx context.Context, spec seriesSpec, series []StructuredItem) PipelineResult {
	result := PipelineResult{Kind: spec.kind, Source: models.ForecastSourceHeuristic}
	if len(series) == 0 {
		result.Predictions = []Prediction{}
		return result
	}

	log := s.logger.WithField("kind", spec.kind)

	text, err := s.generator.Generate(ctx, buildForecastPrompt(spec, series))
	if err == nil && strings.TrimSpace(text) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		log.WithError(err).Warn("Forecast generation failed, using heuristic")
		result.Predictions = heuristicPredictions(spec, series)
		return result
	}

	predictions, err := alignForecast(llm.DecodeForecast(text, spec.keyField), series)
	if err != nil {
		log.WithError(err).Warn("Forecast output rejected, using heuristic")
		result.Predictions = heuristicPredictions(spec, series)
		return result
	}

	result.Source = models.ForecastSourceModel
	result.Predictions = predictions
	return result
}

// alignForecast accepts the decoded items only when they map 1:1 onto the
// series keys. The output follows series order.
func alignForecast(decoded llm.Decoded, series []StructuredItem) ([]Prediction, error) {
	if decoded.Kind != llm.DecodedForecast {
		if decoded.Err != nil {
			return nil, decoded.Err
		}
		return nil, llm.ErrMalformedResponse
	}
	if len(decoded.Forecast) != len(series) {
		return nil, fmt.Errorf("%w: %d predictions for %d points", llm.ErrMalformedResponse, len(decoded.Forecast), len(series))
	}

	byKey := make(map[string]llm.ForecastItem, len(decoded.Forecast))
	for _, item := range decoded.Forecast {
		if _, dup := byKey[item.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", llm.ErrMalformedResponse, item.Key)
		}
		if item.Pred < 0 || math.IsNaN(item.Pred) || math.IsInf(item.Pred, 0) {
			return nil, fmt.Errorf("%w: invalid prediction for %q", llm.ErrMalformedResponse, item.Key)
		}
		byKey[item.Key] = item
	}

	predictions := make([]Prediction, len(series))
	for i, point := range series {
		item, ok := byKey[point.Key]
		if !ok {
			return nil, fmt.Errorf("%w: missing key %q", llm.ErrMalformedResponse, point.Key)
		}
		predictions[i] = predictionFor(point, round2(item.Pred), item.Confidence)
	}
	return predictions, nil
}

func heuristicPredictions(spec seriesSpec, series []StructuredItem) []Prediction {
	values := make([]float64, len(series))
	for i, point := range series {
		values[i] = point.Value
	}
	predicted := spec.heuristic(values)

	predictions := make([]Prediction, len(series))
	for i, point := range series {
		predictions[i] = predictionFor(point, predicted[i], nil)
	}
	return predictions
}

func predictionFor(point StructuredItem, value float64, confidence *int) Prediction {
	return Prediction{
		Key:         point.Key,
		Label:       point.Label,
		ProductID:   point.ProductID,
		Category:    point.Category,
		PeriodStart: point.PeriodStart,
		Actual:      point.Value,
		Value:       value,
		Confidence:  confidence,
	}
}

func buildForecastPrompt(spec seriesSpec, series []StructuredItem) string {
	var b strings.Builder
	b.WriteString("You are a demand planner for an e-commerce store.\n")
	fmt.Fprintf(&b, "Predict %s for every item below. Keep the same items in the same order.\n", spec.unit)
	b.WriteString("Predictions must be non-negative numbers. Confidence is an integer from 0 to 100.\n")
	fmt.Fprintf(&b, "Reply with exactly one JSON object: {\"items\":[{\"%s\": ..., \"pred\": number, \"confidence\": integer}]}\n\n", spec.keyField)
	b.WriteString("Observed data:\n")
	for _, point := range series {
		switch spec.keyField {
		case "id":
			fmt.Fprintf(&b, "- id=%s | name=%s | category=%s | value=%.2f\n", point.Key, point.Label, point.Category, point.Value)
		default:
			fmt.Fprintf(&b, "- %s=%s | value=%.2f\n", spec.keyField, point.Key, point.Value)
		}
	}
	return b.String()
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// ListRuns returns stored runs without their entries, newest first.
func (s *ForecastService) ListRuns(ctx context.Context, params utils.PaginationParams) ([]models.ForecastRun, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.ForecastRun{})
	if params.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(params.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count forecast runs: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "name", "algorithm"})
	query = utils.ApplyPagination(query, params)

	var runs []models.ForecastRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list forecast runs: %w", err)
	}
	return runs, total, nil
}

func (s *ForecastService) GetRun(ctx context.Context, id uuid.UUID) (*models.ForecastRun, error) {
	var run models.ForecastRun
	err := s.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("kind ASC").Order("period_start ASC").Order("value DESC")
		}).
		First(&run, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to load forecast run: %w", err)
	}
	return &run, nil
}

// Compare joins the monthly entries of a run with the actual revenue of the
// same months as of now.
func (s *ForecastService) Compare(ctx context.Context, id uuid.UUID) ([]ComparisonPoint, error) {
	var entries []models.ForecastEntry
	err := s.db.WithContext(ctx).
		Where("run_id = ? AND kind = ?", id, models.ForecastKindSalesTotal).
		Order("period_start ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load forecast entries: %w", err)
	}
	if len(entries) == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.ForecastRun{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to load forecast run: %w", err)
		}
		if count == 0 {
			return nil, ErrRunNotFound
		}
		return []ComparisonPoint{}, nil
	}

	var from, to time.Time
	for _, e := range entries {
		if e.PeriodStart == nil {
			continue
		}
		start := monthStart(e.PeriodStart.UTC())
		if from.IsZero() || start.Before(from) {
			from = start
		}
		if end := start.AddDate(0, 1, 0); end.After(to) {
			to = end
		}
	}

	actuals := make(map[string]float64)
	if !from.IsZero() {
		series, err := s.metrics.MonthlySeries(ctx, MetricRevenue, from, to)
		if err != nil {
			return nil, err
		}
		for _, point := range series {
			actuals[point.Key] = point.Value
		}
	}

	points := make([]ComparisonPoint, 0, len(entries))
	for _, e := range entries {
		actual := actuals[e.Label]
		point := ComparisonPoint{
			Label:       e.Label,
			PeriodStart: e.PeriodStart,
			Predicted:   e.Value,
			Actual:      actual,
			Delta:       round2(e.Value - actual),
			Source:      string(e.Source()),
		}
		if actual != 0 {
			point.ErrorPct = ptr(round2(math.Abs(e.Value-actual) / actual * 100))
		}
		points = append(points, point)
	}
	return points, nil
}
