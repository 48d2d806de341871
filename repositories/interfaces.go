package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/crewhub/model-gateway/models"
)

// AgentRepository provides read access to agent cap configuration
type AgentRepository interface {
	// GetByID retrieves an agent and its configured caps
	GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
}

// WorkflowRepository provides read access to workflow cap configuration
type WorkflowRepository interface {
	// GetByID retrieves a workflow and its configured caps
	GetByID(ctx context.Context, id uuid.UUID) (*models.Workflow, error)
}

// RunRepository persists run history and answers daily-usage aggregate queries
type RunRepository interface {
	// Insert records a run (completed, failed, or blocked)
	Insert(ctx context.Context, run *models.Run) error

	// TodayUsage returns today's (UTC) aggregate usage for an entity,
	// optionally scoped to a workspace
	TodayUsage(ctx context.Context, kind models.RunEntityKind, entityID uuid.UUID, workspaceID *uuid.UUID) (*models.DailyUsage, error)
}

// UsageRepository persists usage accounting rows
type UsageRepository interface {
	// UpsertDaily increments the (model, provider, day) aggregate
	UpsertDaily(ctx context.Context, model, provider string, day time.Time, tokens int, costUSD float64) error

	// InsertLedger appends an immutable per-call accounting row
	InsertLedger(ctx context.Context, entry *models.UsageLedgerEntry) error

	// DailyTotals reads the (model, provider, day) aggregate
	DailyTotals(ctx context.Context, model, provider string, day time.Time) (*models.ModelUsageDaily, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Agents    AgentRepository
	Workflows WorkflowRepository
	Runs      RunRepository
	Usage     UsageRepository
}
