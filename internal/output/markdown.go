package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhabedank/workflow-lens/internal/core"
)

// MarkdownAdapter renders the result as Markdown.
type MarkdownAdapter struct{}

// NewMarkdownAdapter creates a Markdown adapter.
func NewMarkdownAdapter() *MarkdownAdapter {
	return &MarkdownAdapter{}
}

func (a *MarkdownAdapter) Name() string {
	return "markdown"
}

func (a *MarkdownAdapter) Render(w io.Writer, result *core.Result, config Config) error {
	if result == nil || result.Document == nil {
		return fmt.Errorf("nothing to render")
	}
	_, err := io.WriteString(w, markdown(newView(result, config)))
	return err
}

func markdown(v view) string {
	doc := v.Doc
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", v.Heading)
	crumbs := []string{doc.Domain, doc.Process}
	if doc.SubProcess != "" {
		crumbs = append(crumbs, doc.SubProcess)
	}
	fmt.Fprintf(&sb, "_%s_\n\n", strings.Join(crumbs, " › "))
	if v.Repaired {
		sb.WriteString("> The model's first answer was incomplete and was repaired.\n\n")
	}

	sb.WriteString("## Today\n\n")
	writeSteps(&sb, doc.TodaySteps)

	fmt.Fprintf(&sb, "## %d with AI\n\n", v.Year)
	writeSteps(&sb, doc.FutureSteps)

	if len(v.Mapping) > 0 {
		sb.WriteString("## What changes where\n\n")
		fmt.Fprintf(&sb, "| %d step | Replaces today |\n|---|---|\n", v.Year)
		for _, row := range v.Mapping {
			fmt.Fprintf(&sb, "| %s | %s |\n", escapeCell(row.Future.Label), escapeCell(strings.Join(row.Today, ", ")))
		}
		sb.WriteString("\n")
	}

	if len(doc.Opportunities) > 0 {
		sb.WriteString("## AI opportunities\n\n")
		for _, o := range doc.Opportunities {
			fmt.Fprintf(&sb, "- **%s**: %s  \n  Risk: %s · Guardrail: %s\n", o.Activity, o.AICanDo, o.Risk, o.Guardrail)
		}
		sb.WriteString("\n")
	}

	writeList(&sb, "Assumptions", doc.Assumptions)
	writeList(&sb, "Deltas", doc.Deltas)

	if len(doc.ToolSuggestions) > 0 {
		sb.WriteString("## Tools (examples)\n\n")
		for _, t := range doc.ToolSuggestions {
			fmt.Fprintf(&sb, "- **%s**", t.Category)
			if len(t.Examples) > 0 {
				fmt.Fprintf(&sb, ": %s", strings.Join(t.Examples, ", "))
			}
			if t.Why != "" {
				fmt.Fprintf(&sb, " (%s)", t.Why)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	writeList(&sb, "Where time is saved", doc.TimeSaved)
	writeList(&sb, "KPIs to watch", doc.KPIs)

	if len(doc.Glossary) > 0 {
		sb.WriteString("## Glossary\n\n")
		for _, g := range doc.Glossary {
			fmt.Fprintf(&sb, "- **%s**: %s\n", g.Term, g.Definition)
		}
		sb.WriteString("\n")
	}

	writeList(&sb, "Notes", doc.Notes)
	writeList(&sb, "Warnings", v.Warnings)

	if v.Raw != "" {
		fmt.Fprintf(&sb, "## Raw model output\n\n```json\n%s\n```\n", v.Raw)
	}
	return sb.String()
}

func writeSteps(sb *strings.Builder, steps []core.Step) {
	for i, s := range steps {
		fmt.Fprintf(sb, "%d. **%s** `%s`", i+1, s.Label, s.Actor)
		if s.Intent != core.IntentNone {
			fmt.Fprintf(sb, " _%s_", s.Intent)
		}
		if s.Detail != "" {
			fmt.Fprintf(sb, " - %s", s.Detail)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
