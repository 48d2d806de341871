package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/services/providers"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-sonnet-4-20250514"
	apiVersion     = "2023-06-01"
	envAPIKey      = "ANTHROPIC_API_KEY"
)

// defaultCosts holds USD per 1000 tokens for the Claude models the
// gateway routes to.
var defaultCosts = providers.CostTable{
	PerModel: map[string]float64{
		"claude-sonnet-4-20250514":  0.009,
		"claude-3-5-haiku-20241022": 0.0024,
	},
	DefaultRate: 0.009,
}

// Config holds the adapter settings
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Adapter implements the Provider interface for the Anthropic Messages
// API. It is the general-purpose provider: the router picks the model
// tier, and tool definitions pass through to Claude untouched.
type Adapter struct {
	config     Config
	costs      providers.CostTable
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAdapter creates a new Anthropic adapter
func NewAdapter(config Config, logger *zap.Logger) *Adapter {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Adapter{
		config: config,
		costs:  defaultCosts,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

// Name returns the provider name
func (a *Adapter) Name() string {
	return providers.NameAnthropic
}

// messagesRequest is the Anthropic Messages API wire format
type messagesRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Messages    []message       `json:"messages"`
	Tools       json.RawMessage `json:"tools,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// contentBlock is one entry of the response content array. Text blocks
// carry the generated prose; tool_use blocks carry a tool invocation.
type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

type messagesResponse struct {
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Call performs one completion attempt against Anthropic
func (a *Adapter) Call(ctx context.Context, taskType string, params *providers.CallParams) (*providers.Completion, error) {
	if a.config.APIKey == "" {
		return nil, providers.NewMissingCredentialError(a.Name(), envAPIKey)
	}

	model := params.Model
	if model == "" {
		model = defaultModel
	}

	maxTokens := params.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	reqBody, err := json.Marshal(messagesRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      params.SystemPrompt,
		Messages:    []message{{Role: "user", Content: params.Prompt}},
		Tools:       params.Tools,
		Temperature: params.Temperature,
	})
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "failed to marshal request", 0, "", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/v1/messages", bytes.NewReader(reqBody))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "failed to create request", 0, "", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.config.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "request failed", 0, "", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "failed to read response", httpResp.StatusCode, "", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, providers.NewProviderError(a.Name(), "API error", httpResp.StatusCode, string(respBody), nil)
	}

	var resp messagesResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, providers.NewProviderError(a.Name(), "failed to unmarshal response", httpResp.StatusCode, "", err)
	}

	if len(resp.Content) == 0 {
		return nil, providers.NewProviderError(a.Name(), "empty response: no content blocks", httpResp.StatusCode, "", nil)
	}

	if resp.Model != "" {
		model = resp.Model
	}

	var textParts []string
	var toolUses []contentBlock
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textParts = append(textParts, block.Text)
		case "tool_use":
			toolUses = append(toolUses, block)
		}
	}

	var toolCalls json.RawMessage
	if len(toolUses) > 0 {
		toolCalls, err = json.Marshal(toolUses)
		if err != nil {
			return nil, providers.NewProviderError(a.Name(), "failed to marshal tool calls", 0, "", err)
		}
	}

	totalTokens := resp.Usage.InputTokens + resp.Usage.OutputTokens
	completion := &providers.Completion{
		Content:   strings.Join(textParts, ""),
		ToolCalls: toolCalls,
		Provider:  a.Name(),
		Model:     model,
		Usage: providers.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      totalTokens,
		},
		CostUSD: a.costs.CostFor(model, totalTokens),
	}

	a.logger.Debug("anthropic call completed",
		zap.String("model", model),
		zap.String("task_type", taskType),
		zap.Int("total_tokens", totalTokens),
		zap.Float64("cost_usd", completion.CostUSD))

	return completion, nil
}
