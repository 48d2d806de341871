package openai

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/services/providers"
)

// Config holds the adapter settings. BaseURL and Timeout are accepted
// now so wiring does not change when the integration lands.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Adapter is the OpenAI placeholder. It registers like any other
// provider so routing tables may already name "openai", but every call
// fails until the integration is built.
//
// TODO: implement the chat completions call and cost table, then drop
// the stub error from Call.
type Adapter struct {
	config Config
	logger *zap.Logger
}

// NewAdapter creates the OpenAI adapter stub
func NewAdapter(config Config, logger *zap.Logger) *Adapter {
	return &Adapter{
		config: config,
		logger: logger,
	}
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return providers.NameOpenAI
}

// Call always fails; the dispatcher treats it like any other provider
// failure and moves to the next chain entry.
func (a *Adapter) Call(ctx context.Context, taskType string, params *providers.CallParams) (*providers.Completion, error) {
	a.logger.Debug("openai call attempted against stub adapter",
		zap.String("task_type", taskType))
	return nil, providers.NewNotConfiguredError(a.Name(), "OpenAI")
}
