package models

import (
	"time"

	"github.com/google/uuid"
)

// Workflow represents a multi-step automation whose AI steps are metered
// against a per-day run cap and can be switched off entirely.
type Workflow struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	WorkspaceID  *uuid.UUID `json:"workspace_id,omitempty" db:"workspace_id"`
	Name         string     `json:"name" db:"name"`
	DailyRunCap  int        `json:"daily_run_cap" db:"daily_run_cap"`
	EnabledForAI bool       `json:"enabled_for_ai" db:"enabled_for_ai"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Workflow model
func (Workflow) TableName() string {
	return "workflows"
}

// NewWorkflow creates a new Workflow instance
func NewWorkflow(name string, dailyRunCap int) *Workflow {
	now := time.Now()
	return &Workflow{
		ID:           uuid.New(),
		Name:         name,
		DailyRunCap:  dailyRunCap,
		EnabledForAI: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
