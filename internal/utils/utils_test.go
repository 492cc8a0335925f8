// internal/utils/utils_test.go
package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/forecasts/runs?page=0&limit=500&order=sideways&search=nightly", nil)

	params := GetPaginationParams(c)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, DefaultPageSize, params.Limit)
	assert.Equal(t, "desc", params.Order)
	assert.Equal(t, "created_at", params.Sort)
	assert.Equal(t, "nightly", params.Search)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/v1/recommendations?page=3&limit=10&order=asc&sort=priority", nil)
	params = GetPaginationParams(c)
	assert.Equal(t, 20, params.Offset())
	assert.Equal(t, "asc", params.Order)
	assert.Equal(t, "priority", params.Sort)
}

func TestCreatePaginationResult(t *testing.T) {
	result := CreatePaginationResult([]int{1, 2}, 21, PaginationParams{Page: 2, Limit: 10})
	assert.Equal(t, 3, result.TotalPages)
	assert.Equal(t, int64(21), result.Total)

	empty := CreatePaginationResult([]int{}, 0, PaginationParams{})
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, DefaultPageSize, empty.Limit)
}

type listQuery struct {
	Metric    string `validate:"omitempty,metric"`
	Dimension string `validate:"required,dimension"`
	Type      string `validate:"omitempty,recommendation_type"`
	Priority  string `validate:"omitempty,priority"`
}

func TestCustomValidators(t *testing.T) {
	assert.NoError(t, ValidateStruct(listQuery{Metric: "units", Dimension: "month", Type: "bundle", Priority: "high"}))
	assert.NoError(t, ValidateStruct(listQuery{Dimension: "category"}))

	errs := GetValidationErrors(ValidateStruct(listQuery{Metric: "profit", Dimension: "week", Type: "giveaway", Priority: "urgent"}))
	require.Len(t, errs, 4)

	tags := map[string]string{}
	for _, e := range errs {
		tags[e.Field] = e.Message
	}
	assert.Equal(t, "Metric must be one of: revenue, units", tags["metric"])
	assert.Equal(t, "Dimension must be one of: month, product, category", tags["dimension"])
	assert.Contains(t, tags["type"], "pricing_increase")
	assert.Equal(t, "Priority must be one of: low, medium, high", tags["priority"])

	errs = GetValidationErrors(ValidateStruct(listQuery{}))
	require.Len(t, errs, 1)
	assert.Equal(t, "required", errs[0].Tag)
}
