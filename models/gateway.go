package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// GatewayRequest is one generation request. It is call-scoped: built
// from the inbound JSON body, consumed within a single invocation.
type GatewayRequest struct {
	// TaskType drives provider and tier selection
	TaskType string `json:"task_type" validate:"required"`

	// Prompt is the user prompt
	Prompt string `json:"prompt" validate:"required"`

	// SystemPrompt is an optional system instruction
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Tools is passed through untouched to providers that support
	// tool calling
	Tools json.RawMessage `json:"tools,omitempty"`

	// PreferredProvider overrides the task's default chain head
	PreferredProvider string `json:"preferred_provider,omitempty" validate:"omitempty,oneof=perplexity anthropic openai"`

	// FallbackProviders is the ordered fallback list appended after
	// the head (system default when empty)
	FallbackProviders []string `json:"fallback_providers,omitempty" validate:"omitempty,dive,oneof=perplexity anthropic openai"`

	MaxTokens   int     `json:"max_tokens,omitempty" validate:"omitempty,min=1,max=64000"`
	Temperature float64 `json:"temperature,omitempty" validate:"omitempty,min=0,max=2"`

	// Correlation identifiers for admission control and accounting.
	// Admission is only checked when AgentID is present.
	AgentID     *uuid.UUID `json:"agent_id,omitempty"`
	RunID       *uuid.UUID `json:"run_id,omitempty"`
	WorkspaceID *uuid.UUID `json:"workspace_id,omitempty"`
	UserID      *uuid.UUID `json:"user_id,omitempty"`
}

// GatewayUsage reports token counts for one completed call
type GatewayUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GatewayResponse is the normalized result returned to the caller,
// regardless of which provider answered.
type GatewayResponse struct {
	Content   string          `json:"content"`
	Citations []string        `json:"citations,omitempty"`
	ToolCalls json.RawMessage `json:"tool_calls,omitempty"`
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	Usage     GatewayUsage    `json:"usage"`
	CostUSD   float64         `json:"cost_usd"`
}
