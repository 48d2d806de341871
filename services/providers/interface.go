package providers

import (
	"context"
	"encoding/json"
)

// Provider names as they appear in routing tables, fallback chains, and
// usage records.
const (
	NamePerplexity = "perplexity"
	NameAnthropic  = "anthropic"
	NameOpenAI     = "openai"
)

// Provider is one upstream model service behind the gateway. An adapter
// owns its credential, wire format, and cost table; callers only see the
// normalized Completion.
type Provider interface {
	// Name returns the provider name (e.g. "perplexity", "anthropic")
	Name() string

	// Call performs one completion attempt. A failure is terminal for this
	// provider; the dispatcher moves on to the next chain entry instead of
	// retrying.
	Call(ctx context.Context, taskType string, params *CallParams) (*Completion, error)
}

// CallParams carries the normalized request an adapter translates into
// its provider's wire shape.
type CallParams struct {
	// Prompt is the user prompt (required)
	Prompt string

	// SystemPrompt is an optional system instruction
	SystemPrompt string

	// Model overrides the adapter's default model. The router resolves
	// this for tiered providers; other adapters ignore an empty value.
	Model string

	// Tools is an optional tool definition list passed through untouched
	// to providers that support tool calling.
	Tools json.RawMessage

	// MaxTokens limits the response length (0 means adapter default)
	MaxTokens int

	// Temperature controls randomness
	Temperature float64
}

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the normalized result of one successful provider call
type Completion struct {
	// Content is the generated text
	Content string `json:"content"`

	// Citations is populated only by search-capable providers
	Citations []string `json:"citations,omitempty"`

	// ToolCalls is surfaced untouched from providers that support tool
	// calling, for the caller to execute.
	ToolCalls json.RawMessage `json:"tool_calls,omitempty"`

	// Provider that actually answered
	Provider string `json:"provider"`

	// Model identifier actually used
	Model string `json:"model"`

	// Usage statistics reported by the provider
	Usage Usage `json:"usage"`

	// CostUSD derived from the provider's per-model cost table
	CostUSD float64 `json:"cost_usd"`
}

// CostTable maps model identifiers to USD cost per 1000 tokens. Tables
// are immutable configuration injected at adapter construction.
type CostTable struct {
	// PerModel holds USD-per-1K-token rates keyed by model identifier
	PerModel map[string]float64

	// DefaultRate applies to model identifiers missing from PerModel
	DefaultRate float64
}

// CostFor computes the USD cost of a call from its total token count.
// Unknown models fall back to the default rate rather than erroring.
func (t CostTable) CostFor(model string, totalTokens int) float64 {
	rate, ok := t.PerModel[model]
	if !ok {
		rate = t.DefaultRate
	}
	return float64(totalTokens) / 1000.0 * rate
}
