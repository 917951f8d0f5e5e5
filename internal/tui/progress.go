package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dhabedank/workflow-lens/internal/core"
)

// StageInfo holds token and timing figures for one model call.
type StageInfo struct {
	Name         string
	Model        string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
}

// StagesFromResult converts the pipeline's call records. The primary call's
// tokens are counted from its raw text, the repair call is estimated from
// character counts.
func StagesFromResult(result *core.Result, model, repairModel string) []StageInfo {
	stages := make([]StageInfo, 0, len(result.Stages))
	for i, s := range result.Stages {
		info := StageInfo{
			Name:         s.Name,
			Model:        model,
			InputTokens:  EstimateTokens(s.InputChars),
			OutputTokens: EstimateTokens(s.OutputChars),
			Duration:     s.Duration,
		}
		if i == 0 && result.Raw != "" {
			info.OutputTokens = CountTokens(result.Raw)
		}
		if i > 0 {
			info.Model = repairModel
		}
		stages = append(stages, info)
	}
	return stages
}

// RenderStageStart returns a string for stage start (non-interactive mode).
func RenderStageStart(name, model string, inputTokens int) string {
	return fmt.Sprintf("%s %s  %s  ~%s input tokens",
		SpinnerStyle.Render("→"),
		StageStyle.Render(name),
		ModelStyle.Render(model),
		FormatTokens(inputTokens),
	)
}

// RenderStageComplete returns a string for stage completion (non-interactive mode).
func RenderStageComplete(stage StageInfo) string {
	cost := EstimateCost(stage.Model, stage.InputTokens, stage.OutputTokens)

	return fmt.Sprintf("%s %s  %s  ~%s tokens  %s",
		SuccessStyle.Render("✓"),
		StageStyle.Render(stage.Name),
		HelpStyle.Render(stage.Duration.Truncate(time.Second).String()),
		FormatTokens(stage.InputTokens+stage.OutputTokens),
		CostStyle.Render(FormatCost(cost)),
	)
}

// RenderSummary returns a summary string (non-interactive mode).
func RenderSummary(stages []StageInfo) string {
	if len(stages) == 0 {
		return ""
	}

	var totalInputTokens, totalOutputTokens int
	var totalCost float64
	var totalDuration time.Duration

	for _, stage := range stages {
		totalInputTokens += stage.InputTokens
		totalOutputTokens += stage.OutputTokens
		totalCost += EstimateCost(stage.Model, stage.InputTokens, stage.OutputTokens)
		totalDuration += stage.Duration
	}

	return fmt.Sprintf("\n%s\n  Calls: %d  Tokens: ~%s in / ~%s out  Est. cost: %s  Time: %s\n",
		TitleStyle.Render("Generation Complete"),
		len(stages),
		FormatTokens(totalInputTokens),
		FormatTokens(totalOutputTokens),
		CostStyle.Render(FormatCost(totalCost)),
		totalDuration.Truncate(time.Second).String(),
	)
}

// RenderWarnings lists non-fatal issues found in the model's answer.
func RenderWarnings(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, w := range warnings {
		sb.WriteString(WarningStyle.Render("! "+w) + "\n")
	}
	return sb.String()
}

// RenderActorMix counts the target-state steps per actor, in order of first
// appearance, e.g. "Target actors: [AI][HUMAN] x3  [ERP] x1".
func RenderActorMix(doc *core.WorkflowDocument) string {
	if doc == nil || len(doc.FutureSteps) == 0 {
		return ""
	}
	var order []core.Actor
	counts := make(map[core.Actor]int)
	for _, s := range doc.FutureSteps {
		if counts[s.Actor] == 0 {
			order = append(order, s.Actor)
		}
		counts[s.Actor]++
	}

	parts := make([]string, 0, len(order))
	for _, a := range order {
		parts = append(parts, fmt.Sprintf("%s x%d", ActorBadge(a), counts[a]))
	}
	return fmt.Sprintf("  %s %s\n", HelpStyle.Render("Target actors:"), strings.Join(parts, "  "))
}

// RenderSteps draws a wizard's step indicator with current highlighted.
func RenderSteps(steps []string, current int) string {
	var b strings.Builder
	b.WriteString("\n  ")
	for i, s := range steps {
		switch {
		case i == current:
			b.WriteString(SelectedStyle.Render(fmt.Sprintf("[%s]", s)))
		case i < current:
			b.WriteString(SuccessStyle.Render(fmt.Sprintf("✓ %s", s)))
		default:
			b.WriteString(UnselectedStyle.Render(fmt.Sprintf("○ %s", s)))
		}
		if i < len(steps)-1 {
			b.WriteString(" → ")
		}
	}
	b.WriteString("\n\n")
	return b.String()
}
