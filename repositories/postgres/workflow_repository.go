package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/models"
	"github.com/crewhub/model-gateway/repositories"
)

// WorkflowRepository implements the repositories.WorkflowRepository interface
type WorkflowRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *DB, logger *zap.Logger) repositories.WorkflowRepository {
	return &WorkflowRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a workflow and its configured caps
func (r *WorkflowRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Workflow, error) {
	query := `
		SELECT id, workspace_id, name, daily_run_cap, enabled_for_ai, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`

	wf := &models.Workflow{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&wf.ID,
		&wf.WorkspaceID,
		&wf.Name,
		&wf.DailyRunCap,
		&wf.EnabledForAI,
		&wf.CreatedAt,
		&wf.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	return wf, nil
}
