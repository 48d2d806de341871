package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the terminal state of a recorded run
type RunStatus string

const (
	RunStatusCompleted    RunStatus = "completed"
	RunStatusFailed       RunStatus = "failed"
	RunStatusBlockedLimit RunStatus = "blocked_limit"
)

// RunEntityKind identifies which kind of entity a run belongs to
type RunEntityKind string

const (
	RunEntityAgent    RunEntityKind = "agent"
	RunEntityWorkflow RunEntityKind = "workflow"
)

// Run represents one metered gateway invocation. Blocked attempts are
// stored in the same table as successful ones, distinguished only by
// Status and ErrorMessage.
type Run struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	EntityKind   RunEntityKind `json:"entity_kind" db:"entity_kind"`
	EntityID     uuid.UUID     `json:"entity_id" db:"entity_id"`
	WorkspaceID  *uuid.UUID    `json:"workspace_id,omitempty" db:"workspace_id"`
	UserID       *uuid.UUID    `json:"user_id,omitempty" db:"user_id"`
	Status       RunStatus     `json:"status" db:"status"`
	TaskType     string        `json:"task_type" db:"task_type"`
	Provider     *string       `json:"provider,omitempty" db:"provider"`
	Model        *string       `json:"model,omitempty" db:"model"`
	TotalTokens  int           `json:"total_tokens" db:"total_tokens"`
	CostUSD      float64       `json:"cost_usd" db:"cost_usd"`
	ErrorMessage *string       `json:"error_message,omitempty" db:"error_message"`
	StartedAt    time.Time     `json:"started_at" db:"started_at"`
}

// TableName returns the table name for the Run model
func (Run) TableName() string {
	return "runs"
}

// NewBlockedRun creates a Run recording a gatekeeper denial
func NewBlockedRun(kind RunEntityKind, entityID uuid.UUID, reason string) *Run {
	return &Run{
		ID:           uuid.New(),
		EntityKind:   kind,
		EntityID:     entityID,
		Status:       RunStatusBlockedLimit,
		ErrorMessage: &reason,
		StartedAt:    time.Now().UTC(),
	}
}

// NewCompletedRun creates a Run recording a successful generation
func NewCompletedRun(kind RunEntityKind, entityID uuid.UUID, taskType, provider, model string, totalTokens int, costUSD float64) *Run {
	return &Run{
		ID:          uuid.New(),
		EntityKind:  kind,
		EntityID:    entityID,
		Status:      RunStatusCompleted,
		TaskType:    taskType,
		Provider:    &provider,
		Model:       &model,
		TotalTokens: totalTokens,
		CostUSD:     costUSD,
		StartedAt:   time.Now().UTC(),
	}
}

// DailyUsage is an aggregate view over today's runs for one entity.
// It is computed fresh on every admission check and never stored.
type DailyUsage struct {
	RunCount    int     `json:"run_count"`
	TotalCost   float64 `json:"total_cost"`
	TotalTokens int     `json:"total_tokens"`
}
