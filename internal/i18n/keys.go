// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationRequired = "validation.required"

	// Scope and lookups
	KeyScopeEmpty          = "scope.empty"
	KeyForecastRunNotFound = "forecast_run.not_found"
	KeyRecommendationNone  = "recommendation.not_found"

	// Text generation
	KeyAIUnavailable   = "ai.unavailable"
	KeyAIEmpty         = "ai.empty_response"
	KeyAINotConfigured = "ai.not_configured"

	// Rate limiting
	KeyRateLimitExceeded   = "rate_limit.exceeded"
	KeyAIRateLimitExceeded = "rate_limit.ai_exceeded"

	// System
	KeyInternalError = "system.internal_error"
	KeyHealthy       = "system.healthy"
)
