package tui

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// ModelPricing contains pricing per 1M tokens for various models.
// Prices are in USD, list prices as of 2026-01.
var ModelPricing = map[string]struct {
	InputPer1M  float64
	OutputPer1M float64
}{
	// Claude 4.5 models
	"claude-opus-4-5-20251101":   {InputPer1M: 5.0, OutputPer1M: 25.0},
	"claude-sonnet-4-5-20250929": {InputPer1M: 3.0, OutputPer1M: 15.0},
	"claude-haiku-4-5-20251001":  {InputPer1M: 1.0, OutputPer1M: 5.0},

	// OpenAI models
	"gpt-4.1":      {InputPer1M: 2.0, OutputPer1M: 8.0},
	"gpt-4.1-mini": {InputPer1M: 0.40, OutputPer1M: 1.60},
	"gpt-4o":       {InputPer1M: 2.5, OutputPer1M: 10.0},
	"gpt-4o-mini":  {InputPer1M: 0.15, OutputPer1M: 0.60},
	"codex":        {InputPer1M: 1.25, OutputPer1M: 10.0},

	// Gemini models
	"gemini-2.5-flash": {InputPer1M: 0.30, OutputPer1M: 2.50},
	"gemini-2.5-pro":   {InputPer1M: 1.25, OutputPer1M: 10.0},

	// Fallback for unknown models (use conservative estimate)
	"default": {InputPer1M: 3.0, OutputPer1M: 15.0},
}

var (
	encOnce sync.Once
	enc     tokenizer.Codec
)

// CountTokens counts text with the cl100k_base encoding. Counts for
// non-OpenAI models are approximate. If the encoding cannot be loaded the
// character heuristic is used.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}
	encOnce.Do(func() {
		codec, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			enc = codec
		}
	})
	if enc == nil {
		return EstimateTokens(len(text))
	}
	ids, _, err := enc.Encode(text)
	if err != nil {
		return EstimateTokens(len(text))
	}
	return len(ids)
}

// EstimateTokens estimates token count from character count.
// Uses the approximation that 1 token ≈ 4 characters.
func EstimateTokens(chars int) int {
	if chars <= 0 {
		return 0
	}
	return chars / 4
}

// EstimateCost calculates the estimated cost for a model given token counts.
// Returns cost in USD.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	pricing, ok := ModelPricing[model]
	if !ok {
		pricing = ModelPricing["default"]
	}

	inputCost := float64(inputTokens) * pricing.InputPer1M / 1_000_000
	outputCost := float64(outputTokens) * pricing.OutputPer1M / 1_000_000

	return inputCost + outputCost
}

// FormatCost formats a cost in USD for display.
func FormatCost(cost float64) string {
	if cost < 0.001 {
		return fmt.Sprintf("$%.4f", cost)
	}
	if cost < 0.01 {
		return fmt.Sprintf("$%.3f", cost)
	}
	return fmt.Sprintf("$%.2f", cost)
}

// FormatTokens formats a token count for display.
// Uses k suffix for thousands.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	if tokens < 10000 {
		return fmt.Sprintf("%.1fk", float64(tokens)/1000)
	}
	return fmt.Sprintf("%dk", tokens/1000)
}
