// internal/handlers/forecast.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jguerrero45/dashboard-insights/internal/i18n"
	"github.com/jguerrero45/dashboard-insights/internal/services"
	"github.com/jguerrero45/dashboard-insights/internal/utils"
)

type ForecastHandler struct {
	forecastService *services.ForecastService
}

func NewForecastHandler(forecastService *services.ForecastService) *ForecastHandler {
	return &ForecastHandler{
		forecastService: forecastService,
	}
}

// POST /v1/forecasts
func (h *ForecastHandler) Run(c *gin.Context) {
	var req services.ForecastRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.forecastService.Run(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}

// GET /v1/forecasts/runs
func (h *ForecastHandler) ListRuns(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	runs, total, err := h.forecastService.ListRuns(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(runs, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /v1/forecasts/runs/:id
func (h *ForecastHandler) GetRun(c *gin.Context) {
	id, ok := runID(c)
	if !ok {
		return
	}

	run, err := h.forecastService.GetRun(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, run)
}

// GET /v1/forecasts/runs/:id/comparison
func (h *ForecastHandler) Compare(c *gin.Context) {
	id, ok := runID(c)
	if !ok {
		return
	}

	points, err := h.forecastService.Compare(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"run_id": id, "points": points})
}

func runID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "run id"), nil)
		return uuid.Nil, false
	}
	return id, true
}
