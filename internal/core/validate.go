package core

import "fmt"

// Validate checks a normalized document against the contract minimums.
// Normalization can drop blank entries, so this runs after Normalize even
// though Contract.Check already passed on the raw object.
func (d *WorkflowDocument) Validate(contract Contract) error {
	counts := map[string]int{
		"today_steps":      len(d.TodaySteps),
		"future_steps":     len(d.FutureSteps),
		"assumptions":      len(d.Assumptions),
		"deltas":           len(d.Deltas),
		"opportunities":    len(d.Opportunities),
		"tool_suggestions": len(d.ToolSuggestions),
		"glossary":         len(d.Glossary),
		"time_saved":       len(d.TimeSaved),
		"kpis":             len(d.KPIs),
		"notes":            len(d.Notes),
	}

	var problems []string
	for _, f := range contract.Fields {
		n, ok := counts[f.Name]
		if !ok || !f.Required {
			continue
		}
		if n < f.Min {
			problems = append(problems, fmt.Sprintf("%s: %d usable entries, need at least %d", f.Name, n, f.Min))
		}
	}

	for i, s := range d.TodaySteps {
		if s.Actor.Has(ActorAI) {
			problems = append(problems, fmt.Sprintf("today_steps[%d].actor: AI not allowed today", i))
		}
	}

	if len(problems) > 0 {
		return &SchemaViolation{Problems: problems}
	}
	return nil
}

// Warnings lists non-fatal issues, such as maps_to ids that resolve to no
// today step.
func (d *WorkflowDocument) Warnings() []string {
	var warnings []string
	for _, s := range d.FutureSteps {
		for _, id := range s.MapsTo {
			if _, ok := d.TodayLabel(id); !ok {
				warnings = append(warnings, fmt.Sprintf("future step %q maps to unknown step %q", s.Label, id))
			}
		}
	}
	return warnings
}
