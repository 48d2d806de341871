package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/models"
	"github.com/crewhub/model-gateway/repositories"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// AgentRepository implements the repositories.AgentRepository interface
type AgentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(db *DB, logger *zap.Logger) repositories.AgentRepository {
	return &AgentRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves an agent and its configured caps
func (r *AgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	query := `
		SELECT id, workspace_id, name, daily_run_cap, daily_cost_cap_usd, cost_ceiling_usd,
		       created_at, updated_at
		FROM agents
		WHERE id = $1
	`

	agent := &models.Agent{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&agent.ID,
		&agent.WorkspaceID,
		&agent.Name,
		&agent.DailyRunCap,
		&agent.DailyCostCapUSD,
		&agent.CostCeilingUSD,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	return agent, nil
}
