// internal/handlers/errors.go
package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/jguerrero45/dashboard-insights/internal/i18n"
	"github.com/jguerrero45/dashboard-insights/internal/llm"
	"github.com/jguerrero45/dashboard-insights/internal/services"
	"github.com/jguerrero45/dashboard-insights/internal/utils"
)

// respondError maps service errors onto the response envelope.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)
	_ = c.Error(err)

	var cfgErr *llm.ConfigurationError
	switch {
	case errors.Is(err, services.ErrEmptyScope):
		utils.UnprocessableResponse(c, "EMPTY_SCOPE", i18n.T(lang, i18n.KeyScopeEmpty))
	case errors.Is(err, services.ErrRunNotFound):
		utils.NotFoundResponse(c, "forecast_run")
	case errors.As(err, &cfgErr):
		utils.ServiceUnavailableResponse(c, "AI_NOT_CONFIGURED", i18n.T(lang, i18n.KeyAINotConfigured))
	case errors.Is(err, llm.ErrEmptyResponse):
		utils.BadGatewayResponse(c, "AI_UNAVAILABLE", i18n.T(lang, i18n.KeyAIEmpty))
	case llm.IsTransport(err):
		utils.BadGatewayResponse(c, "AI_UNAVAILABLE", i18n.T(lang, i18n.KeyAIUnavailable))
	default:
		utils.InternalErrorResponse(c, "")
	}
}

// bindAndValidate decodes the JSON body into req and runs the struct
// validators. An empty body keeps the zero request. It writes the error
// response itself and reports false on failure.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)
	if err := c.ShouldBindQuery(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "query"), err.Error())
		return false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}
