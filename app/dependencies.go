package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/config"
	"github.com/crewhub/model-gateway/handlers"
	"github.com/crewhub/model-gateway/middleware"
	"github.com/crewhub/model-gateway/repositories"
	"github.com/crewhub/model-gateway/repositories/postgres"
	"github.com/crewhub/model-gateway/services/admission"
	"github.com/crewhub/model-gateway/services/dispatch"
	"github.com/crewhub/model-gateway/services/gateway"
	"github.com/crewhub/model-gateway/services/providers"
	"github.com/crewhub/model-gateway/services/providers/anthropic"
	"github.com/crewhub/model-gateway/services/providers/openai"
	"github.com/crewhub/model-gateway/services/providers/perplexity"
	"github.com/crewhub/model-gateway/services/router"
	"github.com/crewhub/model-gateway/services/usage"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	Repos *repositories.Repositories

	// Services
	Registry   *providers.Registry
	Router     *router.Router
	Dispatcher *dispatch.Dispatcher
	Gatekeeper *admission.Gatekeeper
	Recorder   *usage.Recorder
	Gateway    *gateway.Service

	// HTTP layer
	GatewayHandler *handlers.GatewayHandler
	HealthHandler  *handlers.HealthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initProviders(cfg)
	deps.initServices(cfg)
	deps.initHTTP(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase opens the PostgreSQL pool and builds the repositories
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	db, err := postgres.NewDB(cfg.Database, d.Logger)
	if err != nil {
		return err
	}

	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	d.DB = db
	d.Repos = postgres.NewRepositories(db, d.Logger)
	return nil
}

// initProviders registers every adapter, configured or not. Scaffolded
// and key-less providers stay in the registry so a chain naming them
// fails with a descriptive error instead of "provider not found".
func (d *Dependencies) initProviders(cfg *config.Config) {
	registry := providers.NewRegistry()

	_ = registry.Register(perplexity.NewAdapter(perplexity.Config{
		APIKey:  cfg.Providers.Perplexity.APIKey,
		BaseURL: cfg.Providers.Perplexity.BaseURL,
		Timeout: cfg.Providers.Perplexity.Timeout,
	}, d.Logger))

	_ = registry.Register(anthropic.NewAdapter(anthropic.Config{
		APIKey:  cfg.Providers.Anthropic.APIKey,
		BaseURL: cfg.Providers.Anthropic.BaseURL,
		Timeout: cfg.Providers.Anthropic.Timeout,
	}, d.Logger))

	_ = registry.Register(openai.NewAdapter(openai.Config{
		APIKey:  cfg.Providers.OpenAI.APIKey,
		BaseURL: cfg.Providers.OpenAI.BaseURL,
		Timeout: cfg.Providers.OpenAI.Timeout,
	}, d.Logger))

	d.Registry = registry
	d.Logger.Info("provider registry initialized", zap.Strings("providers", registry.Names()))
}

// initServices wires the routing, admission, dispatch, and accounting
// services over the repositories and registry
func (d *Dependencies) initServices(cfg *config.Config) {
	d.Router = router.New(router.Defaults(), d.Logger)
	d.Dispatcher = dispatch.NewDispatcher(d.Registry, d.Logger)
	d.Gatekeeper = admission.NewGatekeeper(d.Repos, d.Logger)
	d.Recorder = usage.NewRecorder(d.Repos.Usage, d.Logger, usage.Config{
		BufferSize:  cfg.Usage.BufferSize,
		WorkerCount: cfg.Usage.WorkerCount,
	})
	d.Gateway = gateway.NewService(d.Gatekeeper, d.Router, d.Dispatcher, d.Recorder, d.Repos.Runs, d.Logger)
}

// initHTTP builds the handlers and middleware
func (d *Dependencies) initHTTP(cfg *config.Config) {
	d.GatewayHandler = handlers.NewGatewayHandler(d.Gateway, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience, d.Logger)

	if !d.AuthMiddleware.Enabled() {
		d.Logger.Warn("authentication disabled, all callers are anonymous")
	}
}

// Start brings up the background workers
func (d *Dependencies) Start() error {
	return d.Recorder.Start()
}

// Shutdown drains the recorder and closes the database pool
func (d *Dependencies) Shutdown(timeout time.Duration) {
	if err := d.Recorder.Stop(timeout); err != nil {
		d.Logger.Warn("usage recorder shutdown incomplete", zap.Error(err))
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Warn("failed to close database", zap.Error(err))
	}
}
