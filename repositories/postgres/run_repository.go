package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/models"
	"github.com/crewhub/model-gateway/repositories"
)

// RunRepository implements the repositories.RunRepository interface
type RunRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB, logger *zap.Logger) repositories.RunRepository {
	return &RunRepository{
		db:     db,
		logger: logger,
	}
}

// Insert records a run. Blocked attempts share this table with successful
// runs, distinguished only by status and error_message.
func (r *RunRepository) Insert(ctx context.Context, run *models.Run) error {
	query := `
		INSERT INTO runs (
			id, entity_kind, entity_id, workspace_id, user_id, status, task_type,
			provider, model, total_tokens, cost_usd, error_message, started_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.EntityKind,
		run.EntityID,
		run.WorkspaceID,
		run.UserID,
		run.Status,
		run.TaskType,
		run.Provider,
		run.Model,
		run.TotalTokens,
		run.CostUSD,
		run.ErrorMessage,
		run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	r.logger.Debug("run inserted",
		zap.String("id", run.ID.String()),
		zap.String("status", string(run.Status)))
	return nil
}

// TodayUsage returns today's (UTC) aggregate usage for an entity.
// Blocked rows are excluded so a denied attempt does not consume budget.
func (r *RunRepository) TodayUsage(ctx context.Context, kind models.RunEntityKind, entityID uuid.UUID, workspaceID *uuid.UUID) (*models.DailyUsage, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(cost_usd), 0), COALESCE(SUM(total_tokens), 0)
		FROM runs
		WHERE entity_kind = $1
		  AND entity_id = $2
		  AND status != $3
		  AND started_at >= date_trunc('day', now() AT TIME ZONE 'utc')
	`
	args := []interface{}{kind, entityID, models.RunStatusBlockedLimit}

	if workspaceID != nil {
		query += " AND workspace_id = $4"
		args = append(args, *workspaceID)
	}

	usage := &models.DailyUsage{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&usage.RunCount,
		&usage.TotalCost,
		&usage.TotalTokens,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query today's usage: %w", err)
	}

	return usage, nil
}
