package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/models"
)

func TestUsageRepository_UpsertDaily(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUsageRepository(db, zap.NewNop())

	day := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO model_usage_daily`).
		WithArgs("claude-sonnet-4", "anthropic", day.Truncate(24*time.Hour), 1200, 0.0108, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertDaily(context.Background(), "claude-sonnet-4", "anthropic", day, 1200, 0.0108)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageRepository_InsertLedger(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUsageRepository(db, zap.NewNop())

	entry := models.NewUsageLedgerEntry(uuid.New(), "perplexity", "sonar-pro", "web_research", 900, 0.0081)
	agentID := uuid.New()
	runID := uuid.New()
	entry.AgentID = &agentID
	entry.RunID = &runID

	mock.ExpectExec(`INSERT INTO workspace_usage_ledger`).
		WithArgs(
			entry.ID, entry.WorkspaceID, agentID, runID, entry.Provider, entry.Model,
			entry.TaskType, entry.TotalTokens, entry.CostUSD, entry.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.InsertLedger(context.Background(), entry)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageRepository_DailyTotals(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUsageRepository(db, zap.NewNop())

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("existing row", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"model", "provider", "usage_date", "request_count", "input_tokens", "cost_usd", "updated_at"}).
			AddRow("sonar-pro", "perplexity", day, 7, 6100, 0.055, time.Now())

		mock.ExpectQuery(`SELECT model, provider, usage_date`).
			WithArgs("sonar-pro", "perplexity", day).
			WillReturnRows(rows)

		got, err := repo.DailyTotals(context.Background(), "sonar-pro", "perplexity", day)

		require.NoError(t, err)
		assert.Equal(t, 7, got.RequestCount)
		assert.Equal(t, 6100, got.InputTokens)
		assert.InDelta(t, 0.055, got.CostUSD, 1e-9)
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectQuery(`SELECT model, provider, usage_date`).
			WithArgs("unknown", "perplexity", day).
			WillReturnRows(sqlmock.NewRows([]string{"model"}))

		_, err := repo.DailyTotals(context.Background(), "unknown", "perplexity", day)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
