package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/services"
	"github.com/crewhub/model-gateway/utils"
)

// HandleServiceError maps domain errors to HTTP responses. Handlers
// stay thin: decode, validate, call the service, hand errors here.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)

	switch {
	case services.IsLimitExceededError(err):
		if writeErr := utils.WriteBlockedLimit(w, errMessage(err), blockedUsageFromDetails(details)); writeErr != nil {
			logger.Error("failed to write blocked limit response", zap.Error(writeErr))
		}

	case services.IsValidationError(err):
		if writeErr := utils.WriteBadRequest(w, errMessage(err), details); writeErr != nil {
			logger.Error("failed to write bad request response", zap.Error(writeErr))
		}

	case services.IsNotFoundError(err):
		if writeErr := utils.WriteNotFound(w, errMessage(err)); writeErr != nil {
			logger.Error("failed to write not found response", zap.Error(writeErr))
		}

	case services.IsUnauthorizedError(err):
		if writeErr := utils.WriteUnauthorized(w, errMessage(err)); writeErr != nil {
			logger.Error("failed to write unauthorized response", zap.Error(writeErr))
		}

	case services.IsAllProvidersFailedError(err):
		logger.Error("provider chain exhausted", zap.Error(err))
		if writeErr := utils.WriteInternalServerError(w, err.Error()); writeErr != nil {
			logger.Error("failed to write internal error response", zap.Error(writeErr))
		}

	default:
		// Internal, provider, configuration, and unknown errors all
		// collapse to a 500; the detail stays in the logs.
		logger.Error("internal server error",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		if writeErr := utils.WriteInternalServerError(w, "An internal error occurred"); writeErr != nil {
			logger.Error("failed to write internal error response", zap.Error(writeErr))
		}
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		if writeErr := utils.WriteBadRequest(w, "Validation failed", details); writeErr != nil {
			logger.Error("failed to write validation error response", zap.Error(writeErr))
		}
		return
	}

	if writeErr := utils.WriteBadRequest(w, err.Error(), nil); writeErr != nil {
		logger.Error("failed to write validation error response", zap.Error(writeErr))
	}
}

// errMessage prefers the bare domain message over the "type: message"
// rendering of Error()
func errMessage(err error) string {
	if domainErr, ok := err.(*services.DomainError); ok {
		return domainErr.Message
	}
	return err.Error()
}

// blockedUsageFromDetails rebuilds the usage snapshot attached to an
// admission denial. Missing keys render as zeros.
func blockedUsageFromDetails(details map[string]interface{}) *utils.BlockedUsage {
	usage := &utils.BlockedUsage{}
	if details == nil {
		return usage
	}
	if v, ok := details["run_count"].(int); ok {
		usage.RunCount = v
	}
	if v, ok := details["total_cost"].(float64); ok {
		usage.TotalCost = v
	}
	if v, ok := details["daily_run_cap"].(int); ok {
		usage.DailyRunCap = v
	}
	if v, ok := details["daily_cost_cap_usd"].(float64); ok {
		usage.DailyCostCapUSD = v
	}
	return usage
}
