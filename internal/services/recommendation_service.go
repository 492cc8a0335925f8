// internal/services/recommendation_service.go
package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/jguerrero45/dashboard-insights/internal/config"
	"github.com/jguerrero45/dashboard-insights/internal/llm"
	"github.com/jguerrero45/dashboard-insights/internal/models"
	"github.com/jguerrero45/dashboard-insights/internal/utils"
)

const (
	SourceModel    = "model"
	SourceFallback = "fallback"

	maxChangePct = 50
)

type RecommendationService struct {
	db        *gorm.DB
	metrics   *MetricsService
	generator llm.TextGenerator
	rotation  RotationSource
	cfg       config.InsightsConfig
	logger    *logrus.Logger
}

type RecommendationRequest struct {
	ProductIDs []uint  `json:"product_ids" validate:"omitempty,max=50,dive,gt=0"`
	Category   string  `json:"category" validate:"omitempty,max=100"`
	Limit      int     `json:"limit" validate:"omitempty,min=1,max=50"`
	Seed       *uint64 `json:"seed,omitempty"`
	Persist    bool    `json:"persist"`
	Debug      bool    `json:"debug"`
}

// RecommendationCard is the single card shown on the dashboard.
type RecommendationCard struct {
	Title        string                    `json:"title"`
	Priority     models.Priority           `json:"priority"`
	Type         models.RecommendationType `json:"type"`
	ChangePct    *int                      `json:"change_pct"`
	Description  string                    `json:"description"`
	Impact       string                    `json:"impact"`
	ProductID    uint                      `json:"product_id"`
	ProductName  string                    `json:"product_name"`
	ProductLabel string                    `json:"product_label"`
}

type RecommendationResult struct {
	ID       *uuid.UUID         `json:"id,omitempty"`
	Summary  string             `json:"summary"`
	Card     RecommendationCard `json:"card"`
	Products []ProductMetric    `json:"products"`
	Source   string             `json:"source"`
	Seed     uint64             `json:"seed"`
	Options  []Candidate        `json:"options,omitempty"`
}

type RecommendationListParams struct {
	utils.PaginationParams
	Type     string `json:"type,omitempty"`
	Priority string `json:"priority,omitempty"`
}

func NewRecommendationService(db *gorm.DB, metrics *MetricsService, generator llm.TextGenerator, rotation RotationSource, cfg config.InsightsConfig, logger *logrus.Logger) (*RecommendationService, error) {
	if generator == nil {
		return nil, &llm.ConfigurationError{Setting: "text generator"}
	}
	return &RecommendationService{
		db:        db,
		metrics:   metrics,
		generator: generator,
		rotation:  rotation,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Generate computes metrics for the scope, picks a deterministic proposal
// and has the model restate it. Transport failures are returned to the
// caller; unusable model output falls back to the computed proposal.
func (s *RecommendationService) Generate(ctx context.Context, req RecommendationRequest) (*RecommendationResult, error) {
	scope := MetricScope{
		ProductIDs: req.ProductIDs,
		Category:   req.Category,
		Limit:      req.Limit,
	}
	if len(scope.ProductIDs) == 0 && scope.Limit <= 0 {
		scope.Limit = s.cfg.DefaultProductLimit
	}

	metrics, err := s.metrics.Collect(ctx, scope)
	if err != nil {
		return nil, err
	}

	seed := s.nextSeed(ctx, req.Seed)

	focus, err := SelectFocus(metrics, seed)
	if err != nil {
		return nil, err
	}
	options := GenerateOptions(focus)
	best, err := SelectCandidate(options, seed)
	if err != nil {
		return nil, err
	}

	text, err := s.generator.Generate(ctx, BuildRecommendationPrompt(metrics, best))
	if err != nil {
		if !llm.IsTransport(err) {
			err = &llm.TransportError{Model: "text-generation", Err: err}
		}
		s.logger.WithError(err).Error("Recommendation generation failed")
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, llm.ErrEmptyResponse
	}

	card, source := s.buildCard(text, metrics, best)
	card.Priority = DerivePriority(metrics, s.cfg.HighInventoryValue)

	result := &RecommendationResult{
		Summary:  RenderSummary(card),
		Card:     card,
		Products: metrics,
		Source:   source,
		Seed:     seed,
	}
	if req.Debug {
		result.Options = options
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": card.ProductID,
		"type":       card.Type,
		"priority":   card.Priority,
		"source":     source,
		"seed":       seed,
	}).Info("Recommendation generated")

	if req.Persist {
		id, err := s.persist(ctx, result)
		if err != nil {
			return nil, err
		}
		result.ID = &id
	}

	return result, nil
}

func (s *RecommendationService) nextSeed(ctx context.Context, explicit *uint64) uint64 {
	if explicit != nil {
		return *explicit
	}
	if s.rotation == nil {
		return 0
	}
	seed, err := s.rotation.Next(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Rotation counter unavailable, using seed 0")
		return 0
	}
	return seed
}

// buildCard turns the model output into a card, or the best candidate when
// the output is malformed or points outside the scope.
func (s *RecommendationService) buildCard(text string, metrics []ProductMetric, best Candidate) (RecommendationCard, string) {
	names := make(map[uint]string, len(metrics))
	for _, m := range metrics {
		names[m.ID] = m.Name
	}

	decoded := llm.DecodeRecommendation(text, func(t string) bool {
		return models.RecommendationType(t).Valid()
	})
	if decoded.Valid() && decoded.Recommendation.ProductID != nil {
		if _, ok := names[*decoded.Recommendation.ProductID]; !ok {
			decoded = llm.Decoded{Err: fmt.Errorf("%w: product %d is outside the scope", llm.ErrMalformedResponse, *decoded.Recommendation.ProductID)}
		}
	}

	if !decoded.Valid() {
		s.logger.WithError(decoded.Err).Warn("Model output rejected, using computed proposal")
		return RecommendationCard{
			Title:        best.Title,
			Type:         best.Kind,
			ChangePct:    best.ChangePct,
			Description:  best.Description,
			Impact:       best.Impact,
			ProductID:    best.ProductID,
			ProductName:  names[best.ProductID],
			ProductLabel: ProductLabel(names[best.ProductID], best.ProductID),
		}, SourceFallback
	}

	draft := decoded.Recommendation
	productID := best.ProductID
	if draft.ProductID != nil {
		productID = *draft.ProductID
	}
	name := draft.ProductName
	if known := names[productID]; known != "" {
		name = known
	}

	return RecommendationCard{
		Title:        draft.Title,
		Type:         models.RecommendationType(draft.Type),
		ChangePct:    ClampChangePct(draft.ChangePct),
		Description:  draft.Description,
		Impact:       draft.Impact,
		ProductID:    productID,
		ProductName:  name,
		ProductLabel: ProductLabel(name, productID),
	}, SourceModel
}

// ClampChangePct rounds to an integer in [0, 50].
func ClampChangePct(pct *float64) *int {
	if pct == nil {
		return nil
	}
	v := int(math.Round(math.Max(0, math.Min(maxChangePct, *pct))))
	return &v
}

func ProductLabel(name string, id uint) string {
	if name == "" {
		return fmt.Sprintf("Product ID %d", id)
	}
	return fmt.Sprintf("Product: %s (ID %d)", name, id)
}

// RenderSummary formats the card as plain text:
// "{title} · {label}\n{Priority}\n{description}" plus "\n\n{impact}".
func RenderSummary(card RecommendationCard) string {
	priority := string(card.Priority)
	if priority != "" {
		priority = strings.ToUpper(priority[:1]) + priority[1:]
	}

	summary := fmt.Sprintf("%s · %s\n%s\n%s", card.Title, card.ProductLabel, priority, card.Description)
	if card.Impact != "" {
		summary += "\n\n" + card.Impact
	}
	return summary
}

func (s *RecommendationService) persist(ctx context.Context, result *RecommendationResult) (uuid.UUID, error) {
	if s.db == nil {
		return uuid.Nil, fmt.Errorf("recommendation store is not configured")
	}

	card := result.Card
	productID := card.ProductID
	rec := models.Recommendation{
		Title:       card.Title,
		Priority:    card.Priority,
		Type:        card.Type,
		Description: card.Description,
		Impact:      card.Impact,
		ChangePct:   card.ChangePct,
		ProductID:   &productID,
		ProductName: card.ProductName,
		Summary:     result.Summary,
		Source:      result.Source,
		Seed:        int64(result.Seed & math.MaxInt64),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to store recommendation: %w", err)
	}
	return rec.ID, nil
}

// List returns stored recommendations, newest first by default.
func (s *RecommendationService) List(ctx context.Context, params *RecommendationListParams) ([]models.Recommendation, int64, error) {
	if s.db == nil {
		return nil, 0, fmt.Errorf("recommendation store is not configured")
	}

	query := s.db.WithContext(ctx).Model(&models.Recommendation{})
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.Priority != "" {
		query = query.Where("priority = ?", params.Priority)
	}
	if params.Category != "" {
		query = query.Where("product_id IN (?)",
			s.db.Model(&models.Product{}).Select("id").Where("category = ?", params.Category))
	}
	if params.Search != "" {
		like := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(product_name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recommendations: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams, []string{"created_at", "priority", "type", "title"})
	query = utils.ApplyPagination(query, params.PaginationParams)

	var recs []models.Recommendation
	if err := query.Find(&recs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recommendations: %w", err)
	}
	return recs, total, nil
}
