package anthropic

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
	assert.Equal(t, "anthropic", adapter.Name())
}

func TestAdapter_Call_Success(t *testing.T) {
	var gotKey, gotVersion string
	var gotReq messagesRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "claude-3-5-haiku-20241022",
			"content": [{"type": "text", "text": "Sorted into three categories."}],
			"usage": {"input_tokens": 200, "output_tokens": 300}
		}`))
	}))
	defer server.Close()

	adapter := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())

	completion, err := adapter.Call(context.Background(), "classification", &providers.CallParams{
		Prompt:       "Classify these tickets.",
		SystemPrompt: "You are a support triage assistant.",
		Model:        "claude-3-5-haiku-20241022",
	})

	require.NoError(t, err)
	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "2023-06-01", gotVersion)
	assert.Equal(t, "claude-3-5-haiku-20241022", gotReq.Model)
	assert.Equal(t, "You are a support triage assistant.", gotReq.System)
	assert.Equal(t, 4096, gotReq.MaxTokens)

	assert.Equal(t, "Sorted into three categories.", completion.Content)
	assert.Equal(t, "anthropic", completion.Provider)
	assert.Equal(t, 500, completion.Usage.TotalTokens)
	// 500 tokens at 0.0024 USD per 1K
	assert.InDelta(t, 0.0012, completion.CostUSD, 1e-9)
	assert.Nil(t, completion.ToolCalls)
}

func TestAdapter_Call_ToolUse(t *testing.T) {
	var gotReq messagesRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Write([]byte(`{
			"model": "claude-sonnet-4-20250514",
			"content": [
				{"type": "text", "text": "Let me look that up."},
				{"type": "tool_use", "id": "tu_1", "name": "get_weather", "input": {"city": "Bogota"}}
			],
			"usage": {"input_tokens": 400, "output_tokens": 100}
		}`))
	}))
	defer server.Close()

	adapter := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())

	tools := json.RawMessage(`[{"name": "get_weather", "input_schema": {"type": "object"}}]`)
	completion, err := adapter.Call(context.Background(), "tool_use", &providers.CallParams{
		Prompt: "What's the weather in Bogota?",
		Tools:  tools,
	})

	require.NoError(t, err)
	assert.JSONEq(t, string(tools), string(gotReq.Tools))
	assert.Equal(t, "Let me look that up.", completion.Content)

	require.NotNil(t, completion.ToolCalls)
	var calls []map[string]interface{}
	require.NoError(t, json.Unmarshal(completion.ToolCalls, &calls))
	require.Len(t, calls, 1)
	assert.Equal(t, "get_weather", calls[0]["name"])
}

func TestAdapter_Call_DefaultModel(t *testing.T) {
	var gotReq messagesRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{
			"model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "ok"}],
			"usage": {"input_tokens": 10, "output_tokens": 10}
		}`))
	}))
	defer server.Close()

	adapter := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())

	_, err := adapter.Call(context.Background(), "reasoning", &providers.CallParams{Prompt: "think"})

	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", gotReq.Model)
}

func TestAdapter_Call_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"type": "overloaded_error"}}`))
	}))
	defer server.Close()

	adapter := NewAdapter(Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())

	_, err := adapter.Call(context.Background(), "reasoning", &providers.CallParams{Prompt: "hi"})

	require.Error(t, err)
	var provErr *providers.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusInternalServerError, provErr.StatusCode)
	assert.Contains(t, provErr.Body, "overloaded_error")
}

func TestAdapter_Call_MissingCredential(t *testing.T) {
	adapter := NewAdapter(Config{}, zap.NewNop())

	_, err := adapter.Call(context.Background(), "reasoning", &providers.CallParams{Prompt: "hi"})

	require.Error(t, err)
	assert.True(t, providers.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")
}
