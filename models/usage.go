package models

import (
	"time"

	"github.com/google/uuid"
)

// ModelUsageDaily is the running aggregate of gateway traffic keyed by
// (model, provider, calendar day). Rows are upserted with increment
// semantics and age out naturally as the day changes.
type ModelUsageDaily struct {
	Model        string    `json:"model" db:"model"`
	Provider     string    `json:"provider" db:"provider"`
	UsageDate    time.Time `json:"usage_date" db:"usage_date"`
	RequestCount int       `json:"request_count" db:"request_count"`
	InputTokens  int       `json:"input_tokens" db:"input_tokens"`
	CostUSD      float64   `json:"cost_usd" db:"cost_usd"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the ModelUsageDaily model
func (ModelUsageDaily) TableName() string {
	return "model_usage_daily"
}

// UsageLedgerEntry is an immutable per-call accounting row written when a
// workspace context is present, for fine-grained cost attribution.
type UsageLedgerEntry struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	WorkspaceID uuid.UUID  `json:"workspace_id" db:"workspace_id"`
	AgentID     *uuid.UUID `json:"agent_id,omitempty" db:"agent_id"`
	RunID       *uuid.UUID `json:"run_id,omitempty" db:"run_id"`
	Provider    string     `json:"provider" db:"provider"`
	Model       string     `json:"model" db:"model"`
	TaskType    string     `json:"task_type" db:"task_type"`
	TotalTokens int        `json:"total_tokens" db:"total_tokens"`
	CostUSD     float64    `json:"cost_usd" db:"cost_usd"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the UsageLedgerEntry model
func (UsageLedgerEntry) TableName() string {
	return "workspace_usage_ledger"
}

// NewUsageLedgerEntry creates a ledger entry for one call
func NewUsageLedgerEntry(workspaceID uuid.UUID, provider, model, taskType string, totalTokens int, costUSD float64) *UsageLedgerEntry {
	return &UsageLedgerEntry{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Provider:    provider,
		Model:       model,
		TaskType:    taskType,
		TotalTokens: totalTokens,
		CostUSD:     costUSD,
		CreatedAt:   time.Now().UTC(),
	}
}
