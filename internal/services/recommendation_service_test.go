// internal/services/recommendation_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/jguerrero45/dashboard-insights/internal/config"
	"github.com/jguerrero45/dashboard-insights/internal/llm"
	"github.com/jguerrero45/dashboard-insights/internal/models"
	"github.com/jguerrero45/dashboard-insights/internal/repository"
	"github.com/jguerrero45/dashboard-insights/internal/utils"
)

type RecommendationServiceTestSuite struct {
	suite.Suite
	store     *fakeStore
	generator *fakeGenerator
	service   *RecommendationService
}

func (s *RecommendationServiceTestSuite) SetupTest() {
	s.store = &fakeStore{
		now: testNow,
		products: []models.Product{
			product(1, "Wireless Earbuds", "Electronics", 100, ptr(60.0), 200),
			product(2, "Yoga Mat", "Sports", 25, ptr(8.0), 300),
		},
		recent: map[uint]repository.WindowTotal{1: window(1, 200, 20000), 2: window(2, 20, 500)},
		prev:   map[uint]repository.WindowTotal{1: window(1, 100, 10000), 2: window(2, 40, 1000)},
	}
	s.generator = &fakeGenerator{}

	svc, err := NewRecommendationService(nil, newTestMetrics(s.store, testNow), s.generator,
		fixedRotation{value: 0}, config.InsightsConfig{DefaultProductLimit: 3, HighInventoryValue: 5000}, testLogger())
	s.Require().NoError(err)
	s.service = svc
}

func (s *RecommendationServiceTestSuite) expectedBest(ids []uint, seed uint64) (Candidate, []ProductMetric) {
	metrics, err := s.service.metrics.Collect(context.Background(), MetricScope{ProductIDs: ids})
	s.Require().NoError(err)
	focus, err := SelectFocus(metrics, seed)
	s.Require().NoError(err)
	best, err := SelectCandidate(GenerateOptions(focus), seed)
	s.Require().NoError(err)
	return best, metrics
}

func (s *RecommendationServiceTestSuite) TestNoJSONFallsBackToBestCandidate() {
	s.generator.text = "Sorry, I can only answer in prose today."
	seed := uint64(0)

	result, err := s.service.Generate(context.Background(), RecommendationRequest{ProductIDs: []uint{1}, Seed: &seed})
	s.Require().NoError(err)

	best, _ := s.expectedBest([]uint{1}, seed)
	s.Equal(SourceFallback, result.Source)
	s.Equal(best.Title, result.Card.Title)
	s.Equal(best.Kind, result.Card.Type)
	s.Equal(best.Description, result.Card.Description)
	s.Equal(best.Impact, result.Card.Impact)
	s.Equal(best.ChangePct, result.Card.ChangePct)
	s.Equal(models.RecommendationPricingIncrease, result.Card.Type)
	s.Equal("Product: Wireless Earbuds (ID 1)", result.Card.ProductLabel)
}

func (s *RecommendationServiceTestSuite) TestUnknownTypeIsDiscarded() {
	s.generator.text = `{"type":"not_a_real_kind","title":"Go viral","description":"Post memes.","change_pct":90,"product_id":1}`
	seed := uint64(0)

	result, err := s.service.Generate(context.Background(), RecommendationRequest{ProductIDs: []uint{1}, Seed: &seed})
	s.Require().NoError(err)

	best, _ := s.expectedBest([]uint{1}, seed)
	s.Equal(SourceFallback, result.Source)
	s.Equal(best.Title, result.Card.Title)
	s.Equal(best.Kind, result.Card.Type)
	s.Equal(best.Description, result.Card.Description)
	s.Equal(best.Impact, result.Card.Impact)
}

func (s *RecommendationServiceTestSuite) TestValidOutputIsClampedAndFilled() {
	s.generator.text = "Here you go:\n" + `{"type":"discount","title":"Clear the mats","description":"Run a 10% discount.","change_pct":72.6,"impact":""}` + "\nThanks"
	seed := uint64(0)

	result, err := s.service.Generate(context.Background(), RecommendationRequest{ProductIDs: []uint{1, 2}, Seed: &seed})
	s.Require().NoError(err)

	s.Equal(SourceModel, result.Source)
	s.Equal(models.RecommendationDiscount, result.Card.Type)
	s.Require().NotNil(result.Card.ChangePct)
	s.Equal(50, *result.Card.ChangePct)

	// missing product id falls back to the focus product
	s.Equal(uint(1), result.Card.ProductID)
	s.Equal("Wireless Earbuds", result.Card.ProductName)
	s.Equal("Clear the mats · Product: Wireless Earbuds (ID 1)\nHigh\nRun a 10% discount.", result.Summary)
	s.Len(result.Products, 2)
	s.Nil(result.Options)
}

func (s *RecommendationServiceTestSuite) TestZeroProductIDIsFilledFromFocus() {
	s.generator.text = `{"type":"bundle","title":"Earbuds + case","description":"Pair them.","product_id":0}`
	seed := uint64(0)

	result, err := s.service.Generate(context.Background(), RecommendationRequest{ProductIDs: []uint{1, 2}, Seed: &seed})
	s.Require().NoError(err)

	s.Equal(SourceModel, result.Source)
	s.Equal("Earbuds + case", result.Card.Title)
	s.Equal(uint(1), result.Card.ProductID)
	s.Equal("Wireless Earbuds", result.Card.ProductName)
}

func (s *RecommendationServiceTestSuite) TestNegativeChangeIsClampedToZero() {
	s.generator.text = `{"type":"pricing_decrease","title":"Cut","description":"Lower it.","change_pct":-4,"product_id":2,"impact":"+$12 estimated monthly"}`
	seed := uint64(0)

	result, err := s.service.Generate(context.Background(), RecommendationRequest{ProductIDs: []uint{1, 2}, Seed: &seed, Debug: true})
	s.Require().NoError(err)

	s.Equal(SourceModel, result.Source)
	s.Require().NotNil(result.Card.ChangePct)
	s.Equal(0, *result.Card.ChangePct)
	s.Equal(uint(2), result.Card.ProductID)
	s.Equal("Yoga Mat", result.Card.ProductName)
	s.Contains(result.Summary, "\n\n+$12 estimated monthly")
	s.NotEmpty(result.Options)
}

func (s *RecommendationServiceTestSuite) TestProductOutsideScopeFallsBack() {
	s.generator.text = `{"type":"bundle","title":"Bundle","description":"Combo.","product_id":2}`
	seed := uint64(0)

	result, err := s.service.Generate(context.Background(), RecommendationRequest{ProductIDs: []uint{1}, Seed: &seed})
	s.Require().NoError(err)
	s.Equal(SourceFallback, result.Source)
	s.Equal(uint(1), result.Card.ProductID)
}

func (s *RecommendationServiceTestSuite) TestEmptyScope() {
	result, err := s.service.Generate(context.Background(), RecommendationRequest{ProductIDs: []uint{99999999}})
	s.ErrorIs(err, ErrEmptyScope)
	s.Nil(result)
	s.Empty(s.generator.prompts)
}

func (s *RecommendationServiceTestSuite) TestTransportErrorPropagates() {
	s.generator.err = errors.New("quota exceeded")

	result, err := s.service.Generate(context.Background(), RecommendationRequest{})
	s.Nil(result)
	s.True(llm.IsTransport(err))

	s.generator.err = &llm.TransportError{Model: "gemini", Err: errors.New("unauthorized")}
	_, err = s.service.Generate(context.Background(), RecommendationRequest{})
	var te *llm.TransportError
	s.Require().ErrorAs(err, &te)
	s.Equal("gemini", te.Model)
}

func (s *RecommendationServiceTestSuite) TestEmptyResponse() {
	s.generator.text = "   "
	_, err := s.service.Generate(context.Background(), RecommendationRequest{})
	s.ErrorIs(err, llm.ErrEmptyResponse)
}

func (s *RecommendationServiceTestSuite) TestPromptCarriesMetricsAndProposal() {
	s.generator.text = "no"
	seed := uint64(0)

	_, err := s.service.Generate(context.Background(), RecommendationRequest{ProductIDs: []uint{1, 2}, Seed: &seed})
	s.Require().NoError(err)
	s.Require().Len(s.generator.prompts, 1)

	prompt := s.generator.prompts[0]
	s.Contains(prompt, "id=1 | name=Wireless Earbuds")
	s.Contains(prompt, "id=2 | name=Yoga Mat")
	s.Contains(prompt, "type=pricing_increase change_pct=6 product_id=1")
}

func (s *RecommendationServiceTestSuite) TestRotationSuppliesSeed() {
	s.generator.text = "no"
	s.service.rotation = fixedRotation{value: 1}

	result, err := s.service.Generate(context.Background(), RecommendationRequest{ProductIDs: []uint{1}})
	s.Require().NoError(err)
	s.Equal(uint64(1), result.Seed)

	best, _ := s.expectedBest([]uint{1}, 1)
	s.Equal(best.Title, result.Card.Title)

	s.service.rotation = fixedRotation{err: errors.New("redis down")}
	result, err = s.service.Generate(context.Background(), RecommendationRequest{ProductIDs: []uint{1}})
	s.Require().NoError(err)
	s.Equal(uint64(0), result.Seed)
}

func TestRecommendationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecommendationServiceTestSuite))
}

func TestNewRecommendationServiceRequiresGenerator(t *testing.T) {
	_, err := NewRecommendationService(nil, nil, nil, nil, config.InsightsConfig{}, testLogger())
	var cfgErr *llm.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRenderSummary(t *testing.T) {
	card := RecommendationCard{
		Title:        "Bundle to Maximize Ticket Size",
		Priority:     models.PriorityMedium,
		Description:  "Action: build a bundle.",
		ProductLabel: ProductLabel("Desk Lamp", 9),
	}
	assert.Equal(t, "Bundle to Maximize Ticket Size · Product: Desk Lamp (ID 9)\nMedium\nAction: build a bundle.", RenderSummary(card))

	card.Impact = "+$40 estimated monthly"
	assert.Equal(t, "Bundle to Maximize Ticket Size · Product: Desk Lamp (ID 9)\nMedium\nAction: build a bundle.\n\n+$40 estimated monthly", RenderSummary(card))
}

func TestClampChangePct(t *testing.T) {
	assert.Nil(t, ClampChangePct(nil))
	assert.Equal(t, 0, *ClampChangePct(ptr(-3.0)))
	assert.Equal(t, 13, *ClampChangePct(ptr(12.6)))
	assert.Equal(t, 50, *ClampChangePct(ptr(50.4)))
}

func newPersistingService(t *testing.T, db *gorm.DB, text string) *RecommendationService {
	t.Helper()
	require.NoError(t, db.Create(&models.Product{ID: 1, Name: "Desk Lamp", Category: "Home"}).Error)

	svc, err := NewRecommendationService(db, newTestMetrics(repository.NewSalesRepository(db), testNow),
		&fakeGenerator{text: text}, fixedRotation{}, config.InsightsConfig{DefaultProductLimit: 3, HighInventoryValue: 5000}, testLogger())
	require.NoError(t, err)
	return svc
}

func TestGeneratePersistsAndLists(t *testing.T) {
	db := newTestDB(t)
	svc := newPersistingService(t, db, `{"type":"promo_campaign","title":"Lamp campaign","description":"Promote it.","impact":""}`)
	ctx := context.Background()

	result, err := svc.Generate(ctx, RecommendationRequest{Persist: true})
	require.NoError(t, err)
	require.NotNil(t, result.ID)

	_, err = svc.Generate(ctx, RecommendationRequest{})
	require.NoError(t, err)

	recs, total, err := svc.List(ctx, &RecommendationListParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 10, Sort: "created_at", Order: "desc"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, recs, 1)
	assert.Equal(t, *result.ID, recs[0].ID)
	assert.Equal(t, "Lamp campaign", recs[0].Title)
	assert.Equal(t, SourceModel, recs[0].Source)
	assert.Equal(t, result.Summary, recs[0].Summary)

	recs, total, err = svc.List(ctx, &RecommendationListParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 10, Order: "desc"},
		Type:             string(models.RecommendationDiscount),
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, recs)
}
