// internal/handlers/metrics.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jguerrero45/dashboard-insights/internal/config"
	"github.com/jguerrero45/dashboard-insights/internal/i18n"
	"github.com/jguerrero45/dashboard-insights/internal/services"
	"github.com/jguerrero45/dashboard-insights/internal/utils"
)

type MetricsHandler struct {
	metricsService *services.MetricsService
	defaults       config.ForecastConfig
}

func NewMetricsHandler(metricsService *services.MetricsService, defaults config.ForecastConfig) *MetricsHandler {
	return &MetricsHandler{
		metricsService: metricsService,
		defaults:       defaults,
	}
}

type productMetricsQuery struct {
	IDs      string `form:"ids" validate:"omitempty,max=1000"`
	Category string `form:"category" validate:"omitempty,max=100"`
	Limit    int    `form:"limit" validate:"omitempty,min=1,max=200"`
}

// GET /v1/metrics/products
func (h *MetricsHandler) Products(c *gin.Context) {
	var query productMetricsQuery
	if !bindQuery(c, &query) {
		return
	}

	ids, ok := parseIDs(query.IDs)
	if !ok {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "ids"), nil)
		return
	}

	metrics, err := h.metricsService.Collect(c.Request.Context(), services.MetricScope{
		ProductIDs: ids,
		Category:   query.Category,
		Limit:      query.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"products": metrics})
}

type structuredQuery struct {
	Dimension string `form:"dimension" validate:"required,dimension"`
	Metric    string `form:"metric" validate:"omitempty,metric"`
	Months    int    `form:"months" validate:"omitempty,min=1,max=36"`
	Days      int    `form:"days" validate:"omitempty,min=1,max=365"`
	Limit     int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

// GET /v1/metrics/structured
func (h *MetricsHandler) Structured(c *gin.Context) {
	var query structuredQuery
	if !bindQuery(c, &query) {
		return
	}

	metric, _ := services.ParseMetric(query.Metric)
	months := orDefault(query.Months, h.defaults.Months)
	days := orDefault(query.Days, h.defaults.Days)
	limit := orDefault(query.Limit, h.defaults.ProductLimit)

	var (
		result *services.StructuredMetrics
		err    error
	)
	ctx := c.Request.Context()
	switch services.Dimension(query.Dimension) {
	case services.DimensionMonth:
		result, err = h.metricsService.StructuredMonthly(ctx, metric, months)
	case services.DimensionProduct:
		result, err = h.metricsService.StructuredByProduct(ctx, metric, days, limit)
	default:
		result, err = h.metricsService.StructuredByCategory(ctx, metric, days)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

func parseIDs(raw string) ([]uint, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, true
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil || id == 0 {
			return nil, false
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}

func orDefault(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
