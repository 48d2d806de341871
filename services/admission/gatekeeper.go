package admission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/models"
	"github.com/crewhub/model-gateway/repositories"
	"github.com/crewhub/model-gateway/repositories/postgres"
)

// Conservative caps applied when an entity lookup fails. The status
// must always carry renderable numbers, even for an unknown entity.
const (
	DefaultDailyRunCap     = 10
	DefaultDailyCostCapUSD = 5.00
	DefaultCostCeilingUSD  = 0.50
)

// AgentLimitStatus is a per-agent-per-day admission snapshot. It is a
// view over the runs aggregate, computed fresh on every check.
type AgentLimitStatus struct {
	AgentID uuid.UUID `json:"agent_id"`

	// Observed so far today (UTC)
	RunCount    int     `json:"run_count"`
	TotalCost   float64 `json:"total_cost"`
	TotalTokens int     `json:"total_tokens"`

	// Configured caps
	DailyRunCap     int     `json:"daily_run_cap"`
	DailyCostCapUSD float64 `json:"daily_cost_cap_usd"`
	CostCeilingUSD  float64 `json:"cost_ceiling_usd"`

	// Derived
	RunLimitReached  bool    `json:"run_limit_reached"`
	CostLimitReached bool    `json:"cost_limit_reached"`
	RunPercentUsed   float64 `json:"run_percent_used"`
	CostPercentUsed  float64 `json:"cost_percent_used"`

	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason,omitempty"`
}

// WorkflowLimitStatus is the per-workflow admission snapshot. Workflows
// have no cost cap; an AI-disabled workflow is blocked outright.
type WorkflowLimitStatus struct {
	WorkflowID uuid.UUID `json:"workflow_id"`

	RunCount    int     `json:"run_count"`
	TotalCost   float64 `json:"total_cost"`
	TotalTokens int     `json:"total_tokens"`

	DailyRunCap  int  `json:"daily_run_cap"`
	EnabledForAI bool `json:"enabled_for_ai"`

	RunLimitReached bool    `json:"run_limit_reached"`
	RunPercentUsed  float64 `json:"run_percent_used"`

	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason,omitempty"`
}

// Gatekeeper decides whether a request may proceed, based on the
// entity's configured caps and its usage so far today. The usage read
// and the eventual run write are separate operations; concurrent
// requests for the same entity can race past the cap between them.
type Gatekeeper struct {
	agents    repositories.AgentRepository
	workflows repositories.WorkflowRepository
	runs      repositories.RunRepository
	logger    *zap.Logger
}

// NewGatekeeper creates an admission gatekeeper
func NewGatekeeper(repos *repositories.Repositories, logger *zap.Logger) *Gatekeeper {
	return &Gatekeeper{
		agents:    repos.Agents,
		workflows: repos.Workflows,
		runs:      repos.Runs,
		logger:    logger,
	}
}

// CheckAgentLimits computes the admission snapshot for an agent. An
// unknown agent is blocked with default caps filled in. Cap reads and
// usage reads that fail at the store level surface as errors; only a
// missing entity degrades to a blocked status.
func (g *Gatekeeper) CheckAgentLimits(ctx context.Context, agentID uuid.UUID, workspaceID *uuid.UUID) (*AgentLimitStatus, error) {
	agent, err := g.agents.GetByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			g.logger.Warn("admission check for unknown agent", zap.String("agent_id", agentID.String()))
			return &AgentLimitStatus{
				AgentID:         agentID,
				DailyRunCap:     DefaultDailyRunCap,
				DailyCostCapUSD: DefaultDailyCostCapUSD,
				CostCeilingUSD:  DefaultCostCeilingUSD,
				Blocked:         true,
				Reason:          "Agent not found",
			}, nil
		}
		return nil, fmt.Errorf("failed to load agent: %w", err)
	}

	usage, err := g.runs.TodayUsage(ctx, models.RunEntityAgent, agentID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's usage: %w", err)
	}

	status := &AgentLimitStatus{
		AgentID:         agentID,
		RunCount:        usage.RunCount,
		TotalCost:       usage.TotalCost,
		TotalTokens:     usage.TotalTokens,
		DailyRunCap:     agent.DailyRunCap,
		DailyCostCapUSD: agent.DailyCostCapUSD,
		CostCeilingUSD:  agent.CostCeilingUSD,
	}

	status.RunLimitReached = usage.RunCount >= agent.DailyRunCap
	status.CostLimitReached = usage.TotalCost >= agent.DailyCostCapUSD
	status.RunPercentUsed = percentUsed(float64(usage.RunCount), float64(agent.DailyRunCap))
	status.CostPercentUsed = percentUsed(usage.TotalCost, agent.DailyCostCapUSD)

	// Run cap message wins when both limits trip at once
	switch {
	case status.RunLimitReached:
		status.Blocked = true
		status.Reason = fmt.Sprintf("Daily run limit reached (%d/%d)", usage.RunCount, agent.DailyRunCap)
	case status.CostLimitReached:
		status.Blocked = true
		status.Reason = fmt.Sprintf("Daily cost limit reached ($%.2f/$%.2f)", usage.TotalCost, agent.DailyCostCapUSD)
	}

	return status, nil
}

// CheckWorkflowLimits computes the admission snapshot for a workflow
func (g *Gatekeeper) CheckWorkflowLimits(ctx context.Context, workflowID uuid.UUID) (*WorkflowLimitStatus, error) {
	workflow, err := g.workflows.GetByID(ctx, workflowID)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			g.logger.Warn("admission check for unknown workflow", zap.String("workflow_id", workflowID.String()))
			return &WorkflowLimitStatus{
				WorkflowID:  workflowID,
				DailyRunCap: DefaultDailyRunCap,
				Blocked:     true,
				Reason:      "Workflow not found",
			}, nil
		}
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	usage, err := g.runs.TodayUsage(ctx, models.RunEntityWorkflow, workflowID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's usage: %w", err)
	}

	status := &WorkflowLimitStatus{
		WorkflowID:   workflowID,
		RunCount:     usage.RunCount,
		TotalCost:    usage.TotalCost,
		TotalTokens:  usage.TotalTokens,
		DailyRunCap:  workflow.DailyRunCap,
		EnabledForAI: workflow.EnabledForAI,
	}

	status.RunLimitReached = usage.RunCount >= workflow.DailyRunCap
	status.RunPercentUsed = percentUsed(float64(usage.RunCount), float64(workflow.DailyRunCap))

	switch {
	case !workflow.EnabledForAI:
		status.Blocked = true
		status.Reason = "AI is disabled for this workflow"
	case status.RunLimitReached:
		status.Blocked = true
		status.Reason = fmt.Sprintf("Daily run limit reached (%d/%d)", usage.RunCount, workflow.DailyRunCap)
	}

	return status, nil
}

// RecordBlockedRun persists a denial into the run history, so blocked
// attempts show up next to successful runs, distinguished by status.
func (g *Gatekeeper) RecordBlockedRun(ctx context.Context, kind models.RunEntityKind, entityID uuid.UUID, reason, taskType string, userID, workspaceID *uuid.UUID) error {
	run := models.NewBlockedRun(kind, entityID, reason)
	run.TaskType = taskType
	run.UserID = userID
	run.WorkspaceID = workspaceID

	if err := g.runs.Insert(ctx, run); err != nil {
		return fmt.Errorf("failed to record blocked run: %w", err)
	}

	g.logger.Info("blocked run recorded",
		zap.String("entity_kind", string(kind)),
		zap.String("entity_id", entityID.String()),
		zap.String("reason", reason))
	return nil
}

// WouldExceedCostCeiling screens a single call's estimated cost against
// the per-call ceiling. This is independent of the daily aggregate cap:
// the daily cap protects the day's budget, the ceiling protects against
// one anomalously expensive call.
func WouldExceedCostCeiling(estimatedCost, costCeilingUSD float64) bool {
	return estimatedCost > costCeilingUSD
}

func percentUsed(used, cap float64) float64 {
	if cap <= 0 {
		return 100
	}
	pct := used / cap * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
