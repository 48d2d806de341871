package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent represents an autonomous agent whose model calls are metered
// against per-day caps.
type Agent struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	WorkspaceID     *uuid.UUID `json:"workspace_id,omitempty" db:"workspace_id"`
	Name            string     `json:"name" db:"name"`
	DailyRunCap     int        `json:"daily_run_cap" db:"daily_run_cap"`
	DailyCostCapUSD float64    `json:"daily_cost_cap_usd" db:"daily_cost_cap_usd"`
	CostCeilingUSD  float64    `json:"cost_ceiling_usd" db:"cost_ceiling_usd"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Agent model
func (Agent) TableName() string {
	return "agents"
}

// NewAgent creates a new Agent instance with the given caps
func NewAgent(name string, dailyRunCap int, dailyCostCapUSD, costCeilingUSD float64) *Agent {
	now := time.Now()
	return &Agent{
		ID:              uuid.New(),
		Name:            name,
		DailyRunCap:     dailyRunCap,
		DailyCostCapUSD: dailyCostCapUSD,
		CostCeilingUSD:  costCeilingUSD,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// WithWorkspace sets the workspace the agent belongs to
func (a *Agent) WithWorkspace(workspaceID uuid.UUID) *Agent {
	a.WorkspaceID = &workspaceID
	return a
}
