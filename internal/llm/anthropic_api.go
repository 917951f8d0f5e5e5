package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dhabedank/workflow-lens/internal/core"
)

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// AnthropicAPIAdapter uses the Anthropic API directly.
type AnthropicAPIAdapter struct {
	client      anthropic.Client
	apiKey      string
	model       string
	temperature float64
}

// NewAnthropicAPIAdapter creates an Anthropic API adapter.
func NewAnthropicAPIAdapter(config Config) (*AnthropicAPIAdapter, error) {
	apiKey := config.AnthropicAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, missingCredentials(ProviderAnthropicAPI, "ANTHROPIC_API_KEY")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	model := config.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicAPIAdapter{
		client:      anthropic.NewClient(opts...),
		apiKey:      apiKey,
		model:       model,
		temperature: config.Temperature,
	}, nil
}

func (a *AnthropicAPIAdapter) Name() string {
	return ProviderAnthropicAPI
}

func (a *AnthropicAPIAdapter) IsAvailable() bool {
	return a.apiKey != ""
}

func (a *AnthropicAPIAdapter) Generate(ctx context.Context, req core.GenerationRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(req.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if a.temperature > 0 {
		params.Temperature = anthropic.Float(a.temperature)
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return "", statusFailure(a.Name(), apierr.StatusCode, fmt.Errorf("anthropic API error: %w", err))
		}
		return "", transportFailure(a.Name(), err)
	}

	// Extract text from response
	var output string
	for _, block := range resp.Content {
		if block.Type == "text" {
			output += block.Text
		}
	}
	return output, nil
}
