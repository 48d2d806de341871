package dispatch

import (
	"context"

	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/services"
	"github.com/crewhub/model-gateway/services/providers"
)

// Dispatcher executes a resolved provider chain: one attempt per
// provider, in order, stopping at the first success. There are no
// per-provider retries; a provider gets exactly one shot.
type Dispatcher struct {
	registry *providers.Registry
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher over the given registry
func NewDispatcher(registry *providers.Registry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger,
	}
}

// Dispatch walks the chain until a provider succeeds. Every failure is
// logged with its provider and task type before moving on. When the
// chain is exhausted the last error comes back wrapped, so the caller
// sees why the final attempt failed.
func (d *Dispatcher) Dispatch(ctx context.Context, chain []string, taskType string, params *providers.CallParams, modelFor func(providerName string) string) (*providers.Completion, error) {
	if len(chain) == 0 {
		return nil, services.WrapError(services.ErrorTypeAllProvidersFailed, "empty provider chain", nil)
	}

	var lastErr error

	for _, name := range chain {
		provider, err := d.registry.Get(name)
		if err != nil {
			d.logger.Warn("provider not registered, skipping",
				zap.String("provider", name),
				zap.String("task_type", taskType))
			lastErr = err
			continue
		}

		callParams := *params
		if modelFor != nil && callParams.Model == "" {
			callParams.Model = modelFor(name)
		}

		completion, err := provider.Call(ctx, taskType, &callParams)
		if err == nil {
			d.logger.Info("provider call succeeded",
				zap.String("provider", name),
				zap.String("model", completion.Model),
				zap.String("task_type", taskType),
				zap.Int("total_tokens", completion.Usage.TotalTokens))
			return completion, nil
		}

		d.logger.Warn("provider call failed, trying next in chain",
			zap.String("provider", name),
			zap.String("task_type", taskType),
			zap.Error(err))
		lastErr = err
	}

	return nil, services.WrapError(services.ErrorTypeAllProvidersFailed,
		"all providers in the fallback chain failed", lastErr)
}
