package gateway

import (
	"context"

	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/models"
	"github.com/crewhub/model-gateway/repositories"
	"github.com/crewhub/model-gateway/services"
	"github.com/crewhub/model-gateway/services/admission"
	"github.com/crewhub/model-gateway/services/dispatch"
	"github.com/crewhub/model-gateway/services/providers"
	"github.com/crewhub/model-gateway/services/router"
	"github.com/crewhub/model-gateway/services/usage"
)

// Service orchestrates one generation request: admission check when an
// agent identity is supplied, chain resolution, ordered dispatch, and
// best-effort accounting. The admission read and the run write are not
// atomic; concurrent requests for the same agent can overrun a cap by
// the number of in-flight calls.
type Service struct {
	gatekeeper *admission.Gatekeeper
	router     *router.Router
	dispatcher *dispatch.Dispatcher
	recorder   *usage.Recorder
	runs       repositories.RunRepository
	logger     *zap.Logger
}

// NewService creates the gateway orchestration service
func NewService(
	gatekeeper *admission.Gatekeeper,
	rt *router.Router,
	dispatcher *dispatch.Dispatcher,
	recorder *usage.Recorder,
	runs repositories.RunRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		gatekeeper: gatekeeper,
		router:     rt,
		dispatcher: dispatcher,
		recorder:   recorder,
		runs:       runs,
		logger:     logger,
	}
}

// Generate handles one gateway request end to end. On a gatekeeper
// denial it returns a limit_exceeded error carrying the usage snapshot;
// no provider is ever invoked for a blocked request.
func (s *Service) Generate(ctx context.Context, req *models.GatewayRequest) (*models.GatewayResponse, error) {
	if req.Prompt == "" {
		return nil, services.ErrEmptyPrompt
	}

	if req.AgentID != nil {
		status, err := s.gatekeeper.CheckAgentLimits(ctx, *req.AgentID, req.WorkspaceID)
		if err != nil {
			return nil, services.WrapError(services.ErrorTypeInternal, "admission check failed", err)
		}
		if status.Blocked {
			if err := s.gatekeeper.RecordBlockedRun(ctx, models.RunEntityAgent, *req.AgentID,
				status.Reason, req.TaskType, req.UserID, req.WorkspaceID); err != nil {
				s.logger.Error("failed to record blocked run", zap.Error(err))
			}
			return nil, blockedError(status)
		}
	}

	chain := s.router.Resolve(req.TaskType, req.PreferredProvider, req.FallbackProviders)

	params := &providers.CallParams{
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		Tools:        req.Tools,
		MaxTokens:    req.MaxTokens,
		Temperature:  req.Temperature,
	}

	completion, err := s.dispatcher.Dispatch(ctx, chain, req.TaskType, params, func(name string) string {
		return s.router.ModelFor(name, req.TaskType)
	})
	if err != nil {
		return nil, err
	}

	s.recordCompleted(ctx, req, completion)

	return &models.GatewayResponse{
		Content:   completion.Content,
		Citations: completion.Citations,
		ToolCalls: completion.ToolCalls,
		Provider:  completion.Provider,
		Model:     completion.Model,
		Usage: models.GatewayUsage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
		},
		CostUSD: completion.CostUSD,
	}, nil
}

// recordCompleted persists the run row and queues the usage record.
// Both are best-effort; a successful generation is never downgraded by
// an accounting failure.
func (s *Service) recordCompleted(ctx context.Context, req *models.GatewayRequest, completion *providers.Completion) {
	if req.AgentID != nil {
		run := models.NewCompletedRun(models.RunEntityAgent, *req.AgentID, req.TaskType,
			completion.Provider, completion.Model, completion.Usage.TotalTokens, completion.CostUSD)
		run.WorkspaceID = req.WorkspaceID
		run.UserID = req.UserID

		if err := s.runs.Insert(ctx, run); err != nil {
			s.logger.Error("failed to record completed run",
				zap.String("agent_id", req.AgentID.String()),
				zap.Error(err))
		}
	}

	s.recorder.Record(&usage.Record{
		Provider:    completion.Provider,
		Model:       completion.Model,
		TaskType:    req.TaskType,
		TotalTokens: completion.Usage.TotalTokens,
		CostUSD:     completion.CostUSD,
		WorkspaceID: req.WorkspaceID,
		AgentID:     req.AgentID,
		RunID:       req.RunID,
	})
}

// blockedError wraps a denial into a limit_exceeded error carrying the
// numbers the HTTP layer renders in its 429 body.
func blockedError(status *admission.AgentLimitStatus) error {
	return services.NewDomainError(services.ErrorTypeLimitExceeded, status.Reason, nil).
		WithDetail("run_count", status.RunCount).
		WithDetail("total_cost", status.TotalCost).
		WithDetail("daily_run_cap", status.DailyRunCap).
		WithDetail("daily_cost_cap_usd", status.DailyCostCapUSD)
}
