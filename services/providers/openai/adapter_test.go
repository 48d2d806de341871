package openai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/services/providers"
)

func TestAdapter_Name(t *testing.T) {
	adapter := NewAdapter(Config{APIKey: "test-key"}, zap.NewNop())
	assert.Equal(t, "openai", adapter.Name())
}

func TestAdapter_Call_AlwaysFails(t *testing.T) {
	adapter := NewAdapter(Config{APIKey: "test-key"}, zap.NewNop())

	_, err := adapter.Call(context.Background(), "reasoning", &providers.CallParams{Prompt: "hi"})

	require.Error(t, err)
	assert.True(t, providers.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "OpenAI integration not yet configured")
}
