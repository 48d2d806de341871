package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/models"
	"github.com/crewhub/model-gateway/repositories"
)

// UsageRepository implements the repositories.UsageRepository interface
type UsageRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *DB, logger *zap.Logger) repositories.UsageRepository {
	return &UsageRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertDaily increments the (model, provider, day) aggregate
func (r *UsageRepository) UpsertDaily(ctx context.Context, model, provider string, day time.Time, tokens int, costUSD float64) error {
	query := `
		INSERT INTO model_usage_daily (model, provider, usage_date, request_count, input_tokens, cost_usd, updated_at)
		VALUES ($1, $2, $3, 1, $4, $5, $6)
		ON CONFLICT (model, provider, usage_date)
		DO UPDATE SET
			request_count = model_usage_daily.request_count + 1,
			input_tokens = model_usage_daily.input_tokens + EXCLUDED.input_tokens,
			cost_usd = model_usage_daily.cost_usd + EXCLUDED.cost_usd,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, model, provider, day.UTC().Truncate(24*time.Hour), tokens, costUSD, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert daily usage: %w", err)
	}

	return nil
}

// InsertLedger appends an immutable per-call accounting row
func (r *UsageRepository) InsertLedger(ctx context.Context, entry *models.UsageLedgerEntry) error {
	query := `
		INSERT INTO workspace_usage_ledger (
			id, workspace_id, agent_id, run_id, provider, model, task_type,
			total_tokens, cost_usd, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.WorkspaceID,
		entry.AgentID,
		entry.RunID,
		entry.Provider,
		entry.Model,
		entry.TaskType,
		entry.TotalTokens,
		entry.CostUSD,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage ledger entry: %w", err)
	}

	r.logger.Debug("usage ledger entry inserted",
		zap.String("id", entry.ID.String()),
		zap.String("workspace_id", entry.WorkspaceID.String()))
	return nil
}

// DailyTotals reads the (model, provider, day) aggregate
func (r *UsageRepository) DailyTotals(ctx context.Context, model, provider string, day time.Time) (*models.ModelUsageDaily, error) {
	query := `
		SELECT model, provider, usage_date, request_count, input_tokens, cost_usd, updated_at
		FROM model_usage_daily
		WHERE model = $1 AND provider = $2 AND usage_date = $3
	`

	row := &models.ModelUsageDaily{}
	err := r.db.QueryRowContext(ctx, query, model, provider, day.UTC().Truncate(24*time.Hour)).Scan(
		&row.Model,
		&row.Provider,
		&row.UsageDate,
		&row.RequestCount,
		&row.InputTokens,
		&row.CostUSD,
		&row.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}

	return row, nil
}
