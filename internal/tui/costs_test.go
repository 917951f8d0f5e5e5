package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dhabedank/workflow-lens/internal/core"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name     string
		chars    int
		expected int
	}{
		{"empty", 0, 0},
		{"negative", -10, 0},
		{"small", 40, 10},
		{"medium", 1000, 250},
		{"large", 4000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EstimateTokens(tt.chars)
			if result != tt.expected {
				t.Errorf("EstimateTokens(%d) = %d, want %d", tt.chars, result, tt.expected)
			}
		})
	}
}

func TestCountTokens(t *testing.T) {
	assert.Equal(t, 0, CountTokens(""))

	short := CountTokens("hello world")
	assert.Positive(t, short)
	assert.LessOrEqual(t, short, 3)

	long := CountTokens(strings.Repeat("Reconcile the bank statement. ", 50))
	assert.Greater(t, long, 100)
	assert.Less(t, long, 500)
}

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name         string
		model        string
		inputTokens  int
		outputTokens int
		wantMin      float64
		wantMax      float64
	}{
		{
			name:         "claude opus 4.5",
			model:        "claude-opus-4-5-20251101",
			inputTokens:  1000,
			outputTokens: 500,
			wantMin:      0.017,
			wantMax:      0.018,
		},
		{
			name:         "gpt-4.1-mini",
			model:        "gpt-4.1-mini",
			inputTokens:  1000,
			outputTokens: 2000,
			wantMin:      0.0035,
			wantMax:      0.0037,
		},
		{
			name:         "gemini flash",
			model:        "gemini-2.5-flash",
			inputTokens:  1000,
			outputTokens: 1000,
			wantMin:      0.0027,
			wantMax:      0.0029,
		},
		{
			name:         "unknown model uses default",
			model:        "unknown-model",
			inputTokens:  1000,
			outputTokens: 500,
			wantMin:      0.01,
			wantMax:      0.011,
		},
		{
			name:         "zero tokens",
			model:        "claude-opus-4-5-20251101",
			inputTokens:  0,
			outputTokens: 0,
			wantMin:      0,
			wantMax:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EstimateCost(tt.model, tt.inputTokens, tt.outputTokens)
			if result < tt.wantMin || result > tt.wantMax {
				t.Errorf("EstimateCost(%s, %d, %d) = %f, want between %f and %f",
					tt.model, tt.inputTokens, tt.outputTokens, result, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestFormatCost(t *testing.T) {
	tests := []struct {
		name     string
		cost     float64
		expected string
	}{
		{"tiny", 0.0001, "$0.0001"},
		{"small", 0.005, "$0.005"},
		{"medium", 0.05, "$0.05"},
		{"large", 1.50, "$1.50"},
		{"very large", 100.00, "$100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatCost(tt.cost)
			if result != tt.expected {
				t.Errorf("FormatCost(%f) = %s, want %s", tt.cost, result, tt.expected)
			}
		})
	}
}

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		name     string
		tokens   int
		expected string
	}{
		{"small", 500, "500"},
		{"thousand", 1500, "1.5k"},
		{"large", 15000, "15k"},
		{"very large", 150000, "150k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatTokens(tt.tokens)
			if result != tt.expected {
				t.Errorf("FormatTokens(%d) = %s, want %s", tt.tokens, result, tt.expected)
			}
		})
	}
}

func TestStagesFromResult(t *testing.T) {
	result := &core.Result{
		Raw:      "{}",
		Repaired: true,
		Stages: []core.StageTiming{
			{Name: "generate", InputChars: 4000, OutputChars: 400, Duration: 2 * time.Second},
			{Name: "repair", InputChars: 800, OutputChars: 400, Duration: time.Second},
		},
	}
	stages := StagesFromResult(result, "gpt-4.1-mini", "gpt-4o-mini")
	assert.Len(t, stages, 2)
	assert.Equal(t, 1000, stages[0].InputTokens)
	assert.Equal(t, CountTokens("{}"), stages[0].OutputTokens)
	assert.Equal(t, "gpt-4o-mini", stages[1].Model)
	assert.Equal(t, 200, stages[1].InputTokens)

	summary := RenderSummary(stages)
	assert.Contains(t, summary, "Calls: 2")
	assert.Contains(t, summary, "Time: 3s")
	assert.Empty(t, RenderSummary(nil))
}

func TestActorBadge(t *testing.T) {
	badge := ActorBadge(core.ActorAI | core.ActorHuman)
	assert.Contains(t, badge, "AI")
	assert.Contains(t, badge, "HUMAN")
	assert.Less(t, strings.Index(badge, "AI"), strings.Index(badge, "HUMAN"))
}

func TestRenderActorMix(t *testing.T) {
	assert.Empty(t, RenderActorMix(nil))
	assert.Empty(t, RenderActorMix(&core.WorkflowDocument{}))

	doc := &core.WorkflowDocument{FutureSteps: []core.Step{
		{Label: "Draft", Actor: core.ActorAI | core.ActorHuman},
		{Label: "Post", Actor: core.ActorERP},
		{Label: "Review", Actor: core.ActorAI | core.ActorHuman},
	}}
	mix := RenderActorMix(doc)
	assert.Contains(t, mix, "Target actors:")
	assert.Contains(t, mix, "x2")
	assert.Contains(t, mix, "x1")
	assert.Contains(t, mix, "ERP")
	assert.Less(t, strings.Index(mix, "x2"), strings.Index(mix, "x1"), "actors keep first-appearance order")
}

func TestRenderSteps(t *testing.T) {
	out := RenderSteps([]string{"Domain", "Process", "Focus"}, 1)
	assert.Contains(t, out, "✓ Domain")
	assert.Contains(t, out, "[Process]")
	assert.Contains(t, out, "○ Focus")
	assert.Equal(t, 2, strings.Count(out, " → "))
}
