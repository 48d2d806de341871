package perplexity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/services/providers"
)

func TestAdapter_Name(t *testing.T) {
	adapter := NewAdapter(Config{APIKey: "test-key"}, zap.NewNop())
	assert.Equal(t, "perplexity", adapter.Name())
}

func TestAdapter_Call_Success(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "sonar-pro",
			"citations": ["https://example.com/a", "https://example.com/b"],
			"choices": [{"message": {"content": "Research summary."}}],
			"usage": {"prompt_tokens": 100, "completion_tokens": 400, "total_tokens": 500}
		}`))
	}))
	defer server.Close()

	adapter := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())

	completion, err := adapter.Call(context.Background(), "web_research", &providers.CallParams{
		Prompt:       "What changed in the market this week?",
		SystemPrompt: "Be concise.",
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "sonar-pro", gotReq.Model)
	assert.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)

	assert.Equal(t, "Research summary.", completion.Content)
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, completion.Citations)
	assert.Equal(t, "perplexity", completion.Provider)
	assert.Equal(t, "sonar-pro", completion.Model)
	assert.Equal(t, 500, completion.Usage.TotalTokens)
	// 500 tokens at 0.009 USD per 1K
	assert.InDelta(t, 0.0045, completion.CostUSD, 1e-9)
}

func TestAdapter_Call_UnknownModelUsesDefaultRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"model": "sonar-deep-research",
			"choices": [{"message": {"content": "ok"}}],
			"usage": {"prompt_tokens": 500, "completion_tokens": 500, "total_tokens": 1000}
		}`))
	}))
	defer server.Close()

	adapter := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())

	completion, err := adapter.Call(context.Background(), "web_research", &providers.CallParams{
		Prompt: "dig deep",
		Model:  "sonar-deep-research",
	})

	require.NoError(t, err)
	assert.InDelta(t, 0.005, completion.CostUSD, 1e-9)
}

func TestAdapter_Call_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	adapter := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())

	_, err := adapter.Call(context.Background(), "fact_check", &providers.CallParams{Prompt: "check this"})

	require.Error(t, err)
	var provErr *providers.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusTooManyRequests, provErr.StatusCode)
	assert.Contains(t, provErr.Body, "rate limited")
}

func TestAdapter_Call_MissingCredential(t *testing.T) {
	adapter := NewAdapter(Config{}, zap.NewNop())

	_, err := adapter.Call(context.Background(), "web_research", &providers.CallParams{Prompt: "hi"})

	require.Error(t, err)
	assert.True(t, providers.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "PERPLEXITY_API_KEY")
}

func TestAdapter_Call_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [], "usage": {"total_tokens": 0}}`))
	}))
	defer server.Close()

	adapter := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())

	_, err := adapter.Call(context.Background(), "web_research", &providers.CallParams{Prompt: "hi"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
