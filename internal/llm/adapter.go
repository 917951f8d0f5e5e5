package llm

import (
	"context"
	"time"

	"github.com/dhabedank/workflow-lens/internal/core"
)

// Adapter is the interface all LLM adapters must implement.
type Adapter interface {
	// Name returns the adapter identifier for logging.
	Name() string

	// IsAvailable checks if this adapter can be used (CLI installed, API key set, etc.)
	IsAvailable() bool

	// Generate sends the request to the model and returns its raw text.
	// Failures to obtain any text are *core.GenerationFailure.
	Generate(ctx context.Context, req core.GenerationRequest) (string, error)
}

// Provider names accepted by Config.Provider.
const (
	ProviderAnthropicAPI = "anthropic-api"
	ProviderOpenAIAPI    = "openai-api"
	ProviderGeminiAPI    = "gemini-api"
	ProviderClaudeCLI    = "claude-cli"
	ProviderCodexCLI     = "codex-cli"
)

// Providers lists every provider name in detection order.
var Providers = []string{
	ProviderClaudeCLI,
	ProviderCodexCLI,
	ProviderAnthropicAPI,
	ProviderOpenAIAPI,
	ProviderGeminiAPI,
}

// Config holds configuration for LLM adapters.
type Config struct {
	// PreferCLI prefers CLI tools (claude, codex) over API when available.
	PreferCLI bool `yaml:"prefer_cli"`

	// Provider pins one adapter. Empty means detect.
	Provider string `yaml:"provider"`

	// Model specifies which model to use (optional, adapter chooses default).
	Model string `yaml:"model"`

	// RepairModel is used for the repair request. Falls back to Model.
	RepairModel string `yaml:"repair_model"`

	// API keys for direct API access (optional if CLI is used).
	AnthropicAPIKey string `yaml:"-"`
	OpenAIAPIKey    string `yaml:"-"`
	GeminiAPIKey    string `yaml:"-"`

	// OpenAIBaseURL points the OpenAI adapter at a compatible endpoint.
	OpenAIBaseURL string `yaml:"openai_base_url"`

	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`

	Retry RetryPolicy `yaml:"retry"`
}

// ForRepair returns the configuration used for the repair request.
func (c Config) ForRepair() Config {
	if c.RepairModel != "" {
		c.Model = c.RepairModel
	}
	return c
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PreferCLI:   false,
		Temperature: 0.25,
		Timeout:     90 * time.Second,
		Retry:       DefaultRetryPolicy(),
	}
}
