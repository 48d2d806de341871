package usage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/models"
	"github.com/crewhub/model-gateway/repositories"
)

// Record is one usage observation waiting to be persisted
type Record struct {
	Provider    string
	Model       string
	TaskType    string
	TotalTokens int
	CostUSD     float64

	// Optional accounting context. A ledger row is appended only when
	// WorkspaceID is present.
	WorkspaceID *uuid.UUID
	AgentID     *uuid.UUID
	RunID       *uuid.UUID
}

// Config holds configuration for the Recorder
type Config struct {
	BufferSize  int // Size of the record buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  10000,
		WorkerCount: 2,
	}
}

// Recorder persists usage accounting in the background. Recording is
// best-effort: a full buffer drops the record with a warning, and a
// persistence failure is logged, never propagated. The response path
// must not be downgraded by accounting problems.
type Recorder struct {
	usageRepo   repositories.UsageRepository
	logger      *zap.Logger
	recordChan  chan *Record
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	started     bool
	mu          sync.Mutex
}

// NewRecorder creates a new usage recorder
func NewRecorder(usageRepo repositories.UsageRepository, logger *zap.Logger, config Config) *Recorder {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}

	return &Recorder{
		usageRepo:   usageRepo,
		logger:      logger,
		recordChan:  make(chan *Record, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}
}

// Start starts the background workers
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("usage recorder already started")
	}

	for i := 0; i < r.workerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.started = true
	r.logger.Info("started usage recorder",
		zap.Int("worker_count", r.workerCount),
		zap.Int("buffer_size", r.bufferSize))

	return nil
}

// Stop drains pending records and stops the workers. Records still
// queued when the timeout expires are lost.
func (r *Recorder) Stop(timeout time.Duration) error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return fmt.Errorf("usage recorder not started")
	}
	r.started = false
	r.mu.Unlock()

	r.logger.Info("stopping usage recorder", zap.Int("pending_records", len(r.recordChan)))

	close(r.recordChan)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("usage recorder stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("usage recorder stop timeout after %v", timeout)
	}
}

// Record queues a usage observation without blocking. A full buffer
// drops the record.
func (r *Recorder) Record(record *Record) {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		r.logger.Warn("usage recorder not started, dropping record",
			zap.String("provider", record.Provider),
			zap.String("model", record.Model))
		return
	}
	r.mu.Unlock()

	select {
	case r.recordChan <- record:
	default:
		r.logger.Warn("usage record buffer full, dropping record",
			zap.String("provider", record.Provider),
			zap.String("model", record.Model),
			zap.Float64("cost_usd", record.CostUSD))
	}
}

// Pending returns the number of queued records
func (r *Recorder) Pending() int {
	return len(r.recordChan)
}

// worker processes records from the channel
func (r *Recorder) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("usage worker started", zap.Int("worker_id", id))

	for record := range r.recordChan {
		if err := r.persist(record); err != nil {
			r.logger.Error("failed to persist usage record",
				zap.Int("worker_id", id),
				zap.String("provider", record.Provider),
				zap.String("model", record.Model),
				zap.Error(err))
		}
	}

	r.logger.Debug("usage worker stopped", zap.Int("worker_id", id))
}

// persist writes the daily aggregate and, when a workspace context
// exists, the per-call ledger row. The ledger is additive: the daily
// upsert always happens.
func (r *Recorder) persist(record *Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	day := time.Now().UTC()
	if err := r.usageRepo.UpsertDaily(ctx, record.Model, record.Provider, day, record.TotalTokens, record.CostUSD); err != nil {
		return fmt.Errorf("failed to upsert daily usage: %w", err)
	}

	if record.WorkspaceID == nil {
		return nil
	}

	entry := models.NewUsageLedgerEntry(*record.WorkspaceID, record.Provider, record.Model,
		record.TaskType, record.TotalTokens, record.CostUSD)
	entry.AgentID = record.AgentID
	entry.RunID = record.RunID

	if err := r.usageRepo.InsertLedger(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}

	return nil
}
