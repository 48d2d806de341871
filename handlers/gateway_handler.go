package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/middleware"
	"github.com/crewhub/model-gateway/models"
	"github.com/crewhub/model-gateway/utils"
)

// GenerateService is the orchestration surface the handler depends on
type GenerateService interface {
	Generate(ctx context.Context, req *models.GatewayRequest) (*models.GatewayResponse, error)
}

// GatewayHandler handles generation requests
type GatewayHandler struct {
	service GenerateService
	logger  *zap.Logger
}

// NewGatewayHandler creates a new GatewayHandler
func NewGatewayHandler(service GenerateService, logger *zap.Logger) *GatewayHandler {
	return &GatewayHandler{
		service: service,
		logger:  logger,
	}
}

// HandleGenerate handles POST /v1/generate
func (h *GatewayHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req models.GatewayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	// An authenticated caller's identity wins over whatever the body claims
	if userID := middleware.GetUserIDFromContext(ctx); userID != nil {
		req.UserID = userID
	}

	h.logger.Info("generation request received",
		zap.String("request_id", requestID),
		zap.String("task_type", req.TaskType),
		zap.String("preferred_provider", req.PreferredProvider),
		zap.Bool("has_agent", req.AgentID != nil))

	resp, err := h.service.Generate(ctx, &req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, resp); err != nil {
		h.logger.Error("failed to write response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
