package llm

import (
	"fmt"
	"os"
	"os/exec"
)

// ModelInfo describes an available model.
type ModelInfo struct {
	ID          string // Model identifier (e.g., "gpt-4.1-mini")
	Name        string // Human-readable name (e.g., "GPT-4.1 Mini")
	Description string // Brief description
	Provider    string // Provider name (e.g., "anthropic", "openai", "google")
}

// claudeModels lists Claude models usable through the CLI or the API.
var claudeModels = []ModelInfo{
	{ID: "claude-sonnet-4-5-20250929", Name: "Claude Sonnet 4.5", Description: "Best balance of speed and capability ($3/$15 per MTok)", Provider: "anthropic"},
	{ID: "claude-haiku-4-5-20251001", Name: "Claude Haiku 4.5", Description: "Fastest, most cost-effective ($1/$5 per MTok)", Provider: "anthropic"},
	{ID: "claude-opus-4-5-20251101", Name: "Claude Opus 4.5", Description: "Premium model ($5/$25 per MTok)", Provider: "anthropic"},
}

// openAIModels lists OpenAI models usable through the CLI or the API.
var openAIModels = []ModelInfo{
	{ID: "gpt-4.1-mini", Name: "GPT-4.1 Mini", Description: "Default; cheap and reliable in JSON mode ($0.40/$1.60 per MTok)", Provider: "openai"},
	{ID: "gpt-4.1", Name: "GPT-4.1", Description: "Stronger drafting ($2/$8 per MTok)", Provider: "openai"},
	{ID: "gpt-4o-mini", Name: "GPT-4o Mini", Description: "Most cost-effective ($0.15/$0.60 per MTok)", Provider: "openai"},
}

// geminiModels lists Gemini models usable through the API.
var geminiModels = []ModelInfo{
	{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Description: "Fast, schema-constrained output ($0.30/$2.50 per MTok)", Provider: "google"},
	{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Description: "Most capable Gemini ($1.25/$10 per MTok)", Provider: "google"},
}

// AvailableModels returns models grouped by provider based on installed
// CLIs and configured API keys.
func AvailableModels(config Config) map[string][]ModelInfo {
	result := make(map[string][]ModelInfo)

	if hasBinary("claude") || firstSet(config.AnthropicAPIKey, os.Getenv("ANTHROPIC_API_KEY")) {
		result["anthropic"] = claudeModels
	}
	if hasBinary("codex") || firstSet(config.OpenAIAPIKey, os.Getenv("OPENAI_API_KEY")) {
		result["openai"] = openAIModels
	}
	if firstSet(config.GeminiAPIKey, os.Getenv("GEMINI_API_KEY")) {
		result["google"] = geminiModels
	}
	return result
}

// AllModels returns every known model, available or not.
func AllModels() []ModelInfo {
	var result []ModelInfo
	result = append(result, openAIModels...)
	result = append(result, claudeModels...)
	result = append(result, geminiModels...)
	return result
}

// NewAdapter builds the adapter named by config.Provider, or detects one
// when Provider is empty. The result is wrapped with config.Retry.
func NewAdapter(config Config) (Adapter, error) {
	var (
		a   Adapter
		err error
	)
	switch config.Provider {
	case "":
		a, err = DetectBestAdapter(config)
	case ProviderAnthropicAPI:
		a, err = NewAnthropicAPIAdapter(config)
	case ProviderOpenAIAPI:
		a, err = NewOpenAIAPIAdapter(config)
	case ProviderGeminiAPI:
		a, err = NewGeminiAPIAdapter(config)
	case ProviderClaudeCLI:
		a = NewClaudeCLIAdapter(config)
		if !a.IsAvailable() {
			err = fmt.Errorf("claude CLI not found in PATH")
		}
	case ProviderCodexCLI:
		a = NewCodexCLIAdapter(config)
		if !a.IsAvailable() {
			err = fmt.Errorf("codex CLI not found in PATH")
		}
	default:
		err = fmt.Errorf("unknown provider %q", config.Provider)
	}
	if err != nil {
		return nil, err
	}
	return WithRetry(a, config.Retry), nil
}

// NewGenerators returns the primary and repair adapters. They share a
// provider; the repair adapter uses RepairModel when set.
func NewGenerators(config Config) (primary, repair Adapter, err error) {
	primary, err = NewAdapter(config)
	if err != nil {
		return nil, nil, err
	}
	if config.RepairModel == "" || config.RepairModel == config.Model {
		return primary, primary, nil
	}
	repairConfig := config.ForRepair()
	repairConfig.Provider = primary.Name()
	repair, err = NewAdapter(repairConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("repair adapter: %w", err)
	}
	return primary, repair, nil
}

// DetectBestAdapter finds the best available LLM adapter.
// Priority with PreferCLI: Claude CLI > Codex CLI, then
// OpenAI API > Anthropic API > Gemini API.
func DetectBestAdapter(config Config) (Adapter, error) {
	if config.PreferCLI {
		claude := NewClaudeCLIAdapter(config)
		if claude.IsAvailable() {
			return claude, nil
		}

		codex := NewCodexCLIAdapter(config)
		if codex.IsAvailable() {
			return codex, nil
		}
	}

	if a, err := NewOpenAIAPIAdapter(config); err == nil {
		return a, nil
	}
	if a, err := NewAnthropicAPIAdapter(config); err == nil {
		return a, nil
	}
	if a, err := NewGeminiAPIAdapter(config); err == nil {
		return a, nil
	}

	return nil, fmt.Errorf("no LLM adapter available - set OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY, or install Claude Code or Codex")
}

// ListAvailableAdapters returns all adapters that could be used.
func ListAvailableAdapters(config Config) []string {
	available := []string{}

	if NewClaudeCLIAdapter(config).IsAvailable() {
		available = append(available, ProviderClaudeCLI)
	}
	if NewCodexCLIAdapter(config).IsAvailable() {
		available = append(available, ProviderCodexCLI)
	}
	if firstSet(config.AnthropicAPIKey, os.Getenv("ANTHROPIC_API_KEY")) {
		available = append(available, ProviderAnthropicAPI)
	}
	if firstSet(config.OpenAIAPIKey, os.Getenv("OPENAI_API_KEY")) {
		available = append(available, ProviderOpenAIAPI)
	}
	if firstSet(config.GeminiAPIKey, os.Getenv("GEMINI_API_KEY")) {
		available = append(available, ProviderGeminiAPI)
	}
	return available
}

func hasBinary(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func firstSet(values ...string) bool {
	for _, v := range values {
		if v != "" {
			return true
		}
	}
	return false
}

// ProviderFor picks the provider that serves model m: the vendor's CLI when
// preferCLI is set and it is installed, its API otherwise.
func ProviderFor(m ModelInfo, preferCLI bool) string {
	switch m.Provider {
	case "anthropic":
		if preferCLI && hasBinary("claude") {
			return ProviderClaudeCLI
		}
		return ProviderAnthropicAPI
	case "openai":
		if preferCLI && hasBinary("codex") {
			return ProviderCodexCLI
		}
		return ProviderOpenAIAPI
	case "google":
		return ProviderGeminiAPI
	}
	return ""
}
