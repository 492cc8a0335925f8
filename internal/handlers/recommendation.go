// internal/handlers/recommendation.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jguerrero45/dashboard-insights/internal/services"
	"github.com/jguerrero45/dashboard-insights/internal/utils"
)

type RecommendationHandler struct {
	recommendationService *services.RecommendationService
}

func NewRecommendationHandler(recommendationService *services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationService: recommendationService,
	}
}

// POST /v1/recommendations
func (h *RecommendationHandler) Generate(c *gin.Context) {
	var req services.RecommendationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.recommendationService.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.ID != nil {
		utils.CreatedResponse(c, result)
		return
	}
	utils.SuccessResponse(c, result)
}

type recommendationListQuery struct {
	Type     string `form:"type" validate:"omitempty,recommendation_type"`
	Priority string `form:"priority" validate:"omitempty,priority"`
}

// GET /v1/recommendations
func (h *RecommendationHandler) List(c *gin.Context) {
	var query recommendationListQuery
	if !bindQuery(c, &query) {
		return
	}

	params := services.RecommendationListParams{
		PaginationParams: utils.GetPaginationParams(c),
		Type:             query.Type,
		Priority:         query.Priority,
	}

	recs, total, err := h.recommendationService.List(c.Request.Context(), &params)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(recs, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}
