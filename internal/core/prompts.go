package core

import (
	"fmt"
	"strings"
)

// SystemPrompt is the system instruction for workflow generation.
const SystemPrompt = `You are an evidence-minded operating model and process improvement analyst. You output ONLY valid JSON. No explanations, no commentary, no markdown - just the JSON object.

CRITICAL: Output ONLY the JSON object. Do NOT wrap it in code fences. Do NOT add keys that are not listed.

## APPROACH

- Be conservative: prefer assist/augment over replace. Avoid sci-fi or fully autonomous claims.
- Assume typical enterprise systems exist (ERP, workflow, CRM, HRIS), but do NOT name vendors in workflow steps.
- Keep steps high level and realistic. Labels are short noun phrases.
- Today's workflow has no AI: its actors are HUMAN, ERP or ERP+HUMAN.
- The target workflow clearly differs from today: fewer handoffs, auto-drafting, exception-based review.
- Always include controls: audit trail, access control, policy checks, exception handling.
- Tool suggestions may ONLY use categories and examples from the tool library you are given.

## ACTORS

- HUMAN: a person does the work
- ERP: an enterprise system does it (ERP, workflow engine, CRM, HRIS)
- AI: an AI assistant or agent does it
- Combinations use '+', e.g. AI+HUMAN means AI drafts and a person decides.

## INTENT

Optionally tag each step with one intent: admin (paperwork, data entry), control (checks, compliance), decision (judgement, approvals), relationship (negotiation, stakeholders).
`

// UserPromptTemplate is the per-request prompt. Placeholders are filled by
// BuildUserPrompt.
const UserPromptTemplate = `Produce a grounded, high-level workflow shift view for %d.

## SELECTION

Domain: %s
Process: %s
Sub-process focus: %s
Process goal: %s
Industry: %s
Maturity: %s
Constraints: %s
Context: %s

%s
## TOOL LIBRARY

%s
## OUTPUT CONTRACT

%s`

// BuildUserPrompt renders the user prompt for a selection and contract.
func BuildUserPrompt(sel Selection, contract Contract) string {
	return fmt.Sprintf(
		UserPromptTemplate,
		sel.Year,
		orNone(sel.Domain),
		orNone(sel.Process),
		orNone(sel.Focus),
		orNone(sel.Goal),
		orNone(sel.Industry),
		orNone(sel.Maturity),
		orNone(strings.Join(sel.Constraints, ", ")),
		orNone(strings.TrimSpace(sel.Context)),
		stepsSection(sel, contract),
		toolLibrarySection(sel.ToolLibrary),
		contract.Describe(),
	)
}

func stepsSection(sel Selection, contract Contract) string {
	var sb strings.Builder
	if len(sel.CustomSteps) > 0 {
		sb.WriteString("## CURRENT STEPS (supplied by the user)\n\n")
		for i, s := range sel.CustomSteps {
			sb.WriteString(fmt.Sprintf("T%d. %s\n", i+1, s))
		}
		if contract.Mode == ModeMapping {
			sb.WriteString("\nRestate these steps in today_steps, in order, with ids T1..Tn. ")
			sb.WriteString("Give future steps ids F1..Fn and list in maps_to the T ids each one absorbs.\n")
		}
		sb.WriteString("\n")
		return sb.String()
	}
	if len(sel.DefaultSteps) > 0 {
		sb.WriteString("## REFERENCE STEPS (typical for this process, adapt as needed)\n\n")
		sb.WriteString(strings.Join(sel.DefaultSteps, " -> "))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func toolLibrarySection(library []ToolCategory) string {
	if len(library) == 0 {
		return "None supplied. Leave tool_suggestions categories generic.\n"
	}
	var sb strings.Builder
	for _, t := range library {
		sb.WriteString(fmt.Sprintf("- %s: %s (best for: %s)\n", t.Category, strings.Join(t.Examples, ", "), t.BestFor))
	}
	return sb.String()
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// ParseCustomSteps splits user-entered steps, one per line. Bullets and
// numbering are stripped, blank lines dropped, each line capped at maxChars
// runes and the list capped at maxLines.
func ParseCustomSteps(input string, maxLines, maxChars int) []string {
	var steps []string
	for _, line := range strings.Split(input, "\n") {
		line = PlainText(stripListMarker(strings.TrimSpace(line)))
		if line == "" {
			continue
		}
		if maxChars > 0 {
			if r := []rune(line); len(r) > maxChars {
				line = strings.TrimSpace(string(r[:maxChars]))
			}
		}
		steps = append(steps, line)
		if maxLines > 0 && len(steps) == maxLines {
			break
		}
	}
	return steps
}

// stripListMarker removes "-", "*", "•", "1." and "1)" prefixes.
func stripListMarker(line string) string {
	for _, p := range []string{"- ", "* ", "• ", "-", "*", "•"} {
		if strings.HasPrefix(line, p) {
			return strings.TrimSpace(strings.TrimPrefix(line, p))
		}
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}
