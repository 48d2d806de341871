package router

import (
	"go.uber.org/zap"

	"github.com/crewhub/model-gateway/services/providers"
)

// Task types accepted by the gateway. Unknown task types are not an
// error; they route to the default provider and tier.
const (
	TaskWebResearch     = "web_research"
	TaskCompetitiveScan = "competitive_scan"
	TaskFactCheck       = "fact_check"
	TaskClassification  = "classification"
	TaskExtraction      = "extraction"
	TaskSummarization   = "summarization"
	TaskReasoning       = "reasoning"
	TaskToolUse         = "tool_use"
	TaskPlanning        = "planning"
)

// Claude model tiers. Lightweight tasks run on Haiku; everything else
// gets Sonnet.
const (
	TierModelLight = "claude-3-5-haiku-20241022"
	TierModelHeavy = "claude-sonnet-4-20250514"
)

// Table maps task types to their default provider and lists the
// fallback chain appended after the head. A zero-value Table is usable;
// Defaults() returns the production mapping.
type Table struct {
	// TaskProviders maps a task type to its default provider
	TaskProviders map[string]string

	// DefaultProvider handles task types missing from TaskProviders
	DefaultProvider string

	// Fallbacks are appended after the head when the caller supplies
	// no fallback list of their own
	Fallbacks []string
}

// Defaults returns the production routing table. Research-flavored
// tasks go to Perplexity for its citations; everything else goes to
// Anthropic with the tier picked per task.
func Defaults() Table {
	return Table{
		TaskProviders: map[string]string{
			TaskWebResearch:     providers.NamePerplexity,
			TaskCompetitiveScan: providers.NamePerplexity,
			TaskFactCheck:       providers.NamePerplexity,
			TaskClassification:  providers.NameAnthropic,
			TaskExtraction:      providers.NameAnthropic,
			TaskSummarization:   providers.NameAnthropic,
			TaskReasoning:       providers.NameAnthropic,
			TaskToolUse:         providers.NameAnthropic,
			TaskPlanning:        providers.NameAnthropic,
		},
		DefaultProvider: providers.NameAnthropic,
		Fallbacks:       []string{providers.NameAnthropic},
	}
}

// Router resolves a task type into an ordered provider chain and, for
// tiered providers, the model to use. Resolution never fails: unknown
// task types fall through to the default provider.
type Router struct {
	table  Table
	logger *zap.Logger
}

// New creates a router over the given table
func New(table Table, logger *zap.Logger) *Router {
	if table.DefaultProvider == "" {
		table.DefaultProvider = providers.NameAnthropic
	}
	return &Router{
		table:  table,
		logger: logger,
	}
}

// Resolve builds the provider chain for one request. The head is the
// caller's preferred provider when set, otherwise the task default.
// Caller-supplied fallbacks follow in order (the table's fallbacks when
// none were given), deduplicated so no provider is attempted twice.
func (r *Router) Resolve(taskType, preferred string, fallbacks []string) []string {
	head := preferred
	if head == "" {
		head = r.providerFor(taskType)
	}

	if len(fallbacks) == 0 {
		fallbacks = r.table.Fallbacks
	}

	chain := make([]string, 0, 1+len(fallbacks))
	seen := make(map[string]bool, 1+len(fallbacks))

	chain = append(chain, head)
	seen[head] = true

	for _, name := range fallbacks {
		if seen[name] {
			continue
		}
		chain = append(chain, name)
		seen[name] = true
	}

	r.logger.Debug("resolved provider chain",
		zap.String("task_type", taskType),
		zap.String("preferred", preferred),
		zap.Strings("chain", chain))

	return chain
}

// TierFor picks the Claude model for a task type. Only the Anthropic
// adapter consumes this; other providers have a single model tier.
func (r *Router) TierFor(taskType string) string {
	switch taskType {
	case TaskClassification, TaskExtraction, TaskSummarization:
		return TierModelLight
	default:
		return TierModelHeavy
	}
}

// ModelFor returns the model the adapter should use, or empty when the
// provider picks its own default.
func (r *Router) ModelFor(providerName, taskType string) string {
	if providerName == providers.NameAnthropic {
		return r.TierFor(taskType)
	}
	return ""
}

func (r *Router) providerFor(taskType string) string {
	if name, ok := r.table.TaskProviders[taskType]; ok {
		return name
	}
	return r.table.DefaultProvider
}
