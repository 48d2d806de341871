package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/services/providers"
)

const (
	defaultBaseURL = "https://api.perplexity.ai"
	defaultModel   = "sonar-pro"
	envAPIKey      = "PERPLEXITY_API_KEY"
)

// defaultCosts holds USD per 1000 tokens for the Perplexity models the
// gateway routes to.
var defaultCosts = providers.CostTable{
	PerModel: map[string]float64{
		"sonar-pro": 0.009,
		"sonar":     0.0015,
	},
	DefaultRate: 0.005,
}

// Config holds the adapter settings
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Adapter implements the Provider interface for Perplexity. Perplexity
// is the research-grade provider: its completions carry citations.
type Adapter struct {
	config     Config
	costs      providers.CostTable
	httpClient *http.Client
	logger     *zap.Logger
}

// NewAdapter creates a new Perplexity adapter
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
	return providers.NamePerplexity
}

// chatRequest is the Perplexity chat completions wire format
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model     string   `json:"model"`
	Citations []string `json:"citations"`
	Choices   []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Call performs one completion attempt against Perplexity
func (a *Adapter) Call(ctx context.Context, taskType string, params *providers.CallParams) (*providers.Completion, error) {
	if a.config.APIKey == "" {
		return nil, providers.NewMissingCredentialError(a.Name(), envAPIKey)
	}

	model := params.Model
	if model == "" {
		model = defaultModel
	}

	messages := make([]chatMessage, 0, 2)
	if params.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: params.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: params.Prompt})

	reqBody, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	})
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "failed to marshal request", 0, "", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, providers.NewProviderError(a.Name(), "failed to create request", 0, "", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.config.APIKey)

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

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, providers.NewProviderError(a.Name(), "failed to unmarshal response", httpResp.StatusCode, "", err)
	}

	if len(resp.Choices) == 0 {
		return nil, providers.NewProviderError(a.Name(), "empty response: no choices returned", httpResp.StatusCode, "", nil)
	}

	if resp.Model != "" {
		model = resp.Model
	}

	completion := &providers.Completion{
		Content:   resp.Choices[0].Message.Content,
		Citations: resp.Citations,
		Provider:  a.Name(),
		Model:     model,
		Usage: providers.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		CostUSD: a.costs.CostFor(model, resp.Usage.TotalTokens),
	}

	a.logger.Debug("perplexity call completed",
		zap.String("model", model),
		zap.String("task_type", taskType),
		zap.Int("total_tokens", completion.Usage.TotalTokens),
		zap.Float64("cost_usd", completion.CostUSD))

	return completion, nil
}

// String implements fmt.Stringer for log output
func (a *Adapter) String() string {
	return fmt.Sprintf("perplexity(%s)", a.config.BaseURL)
}
