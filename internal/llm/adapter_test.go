package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/dhabedank/workflow-lens/internal/core"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.False(t, config.PreferCLI)
	assert.Equal(t, 0.25, config.Temperature)
	assert.Equal(t, 3, config.Retry.Attempts)
}

func TestConfig_ForRepair(t *testing.T) {
	c := Config{Model: "gpt-4.1", RepairModel: "gpt-4.1-mini"}
	assert.Equal(t, "gpt-4.1-mini", c.ForRepair().Model)
	assert.Equal(t, "gpt-4.1", c.Model)

	assert.Equal(t, "gpt-4.1", Config{Model: "gpt-4.1"}.ForRepair().Model)
}

func TestAdapterNames(t *testing.T) {
	assert.Equal(t, "claude-cli", NewClaudeCLIAdapter(Config{}).Name())
	assert.Equal(t, "codex-cli", NewCodexCLIAdapter(Config{}).Name())

	anthropicAdapter, err := NewAnthropicAPIAdapter(Config{AnthropicAPIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic-api", anthropicAdapter.Name())
	assert.True(t, anthropicAdapter.IsAvailable())
}

func TestNewAnthropicAPIAdapter_MissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	_, err := NewAnthropicAPIAdapter(Config{})
	var gf *core.GenerationFailure
	require.ErrorAs(t, err, &gf)
	assert.Equal(t, core.FailureMissingCredentials, gf.Kind)
}

func TestNewAdapter(t *testing.T) {
	a, err := NewAdapter(Config{Provider: ProviderOpenAIAPI, OpenAIAPIKey: "k", Retry: DefaultRetryPolicy()})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAIAPI, a.Name())

	_, err = NewAdapter(Config{Provider: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unknown provider")
}

func TestNewGenerators(t *testing.T) {
	primary, repair, err := NewGenerators(Config{Provider: ProviderOpenAIAPI, OpenAIAPIKey: "k"})
	require.NoError(t, err)
	assert.Same(t, primary, repair)

	primary, repair, err = NewGenerators(Config{
		Provider:     ProviderOpenAIAPI,
		OpenAIAPIKey: "k",
		Model:        "gpt-4.1",
		RepairModel:  "gpt-4.1-mini",
	})
	require.NoError(t, err)
	assert.NotSame(t, primary, repair)
	assert.Equal(t, "gpt-4.1-mini", repair.(*OpenAIAPIAdapter).model)
}

func TestListAvailableAdapters(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	adapters := ListAvailableAdapters(Config{OpenAIAPIKey: "k"})
	assert.Contains(t, adapters, ProviderOpenAIAPI)
	assert.NotContains(t, adapters, ProviderGeminiAPI)
}

func TestAllModels(t *testing.T) {
	models := AllModels()
	require.NotEmpty(t, models)
	assert.Equal(t, "gpt-4.1-mini", models[0].ID)
	for _, m := range models {
		assert.NotEmpty(t, m.Provider, m.ID)
	}
}

func TestContractSchema(t *testing.T) {
	s := contractSchema(core.ContractFor(core.ModeLens))

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Contains(t, s.Required, "today_steps")
	assert.NotContains(t, s.Required, "glossary")

	today := s.Properties["today_steps"]
	require.NotNil(t, today)
	assert.Equal(t, genai.TypeArray, today.Type)
	require.NotNil(t, today.MinItems)
	assert.Equal(t, int64(6), *today.MinItems)
	assert.Nil(t, today.MaxItems)
	assert.Equal(t, genai.TypeArray, today.Items.Properties["maps_to"].Type)
	assert.Equal(t, []string{"label", "actor"}, today.Items.Required)

	assert.Equal(t, genai.TypeString, s.Properties["domain"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["kpis"].Items.Type)
}

func TestProviderFor(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	assert.Equal(t, ProviderAnthropicAPI, ProviderFor(ModelInfo{Provider: "anthropic"}, true))
	assert.Equal(t, ProviderOpenAIAPI, ProviderFor(ModelInfo{Provider: "openai"}, false))
	assert.Equal(t, ProviderGeminiAPI, ProviderFor(ModelInfo{Provider: "google"}, true))
	assert.Empty(t, ProviderFor(ModelInfo{Provider: "acme"}, false))
}
