// internal/utils/validator.go
package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("metric", validateMetric)
	validate.RegisterValidation("dimension", validateDimension)
	validate.RegisterValidation("recommendation_type", validateRecommendationType)
	validate.RegisterValidation("priority", validatePriority)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

func validateMetric(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(), "revenue", "units")
}

func validateDimension(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(), "month", "product", "category")
}

func validateRecommendationType(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(), "pricing_increase", "pricing_decrease", "discount", "bundle", "promo_campaign")
}

func validatePriority(fl validator.FieldLevel) bool {
	return oneOf(fl.Field().String(), "low", "medium", "high")
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "metric":
		return "Metric must be one of: revenue, units"
	case "dimension":
		return "Dimension must be one of: month, product, category"
	case "recommendation_type":
		return "Type must be one of: pricing_increase, pricing_decrease, discount, bundle, promo_campaign"
	case "priority":
		return "Priority must be one of: low, medium, high"
	default:
		return e.Field() + " is invalid"
	}
}
