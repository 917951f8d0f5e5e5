package core

import (
	"fmt"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"
)

var intentSynonyms = map[string]Intent{
	"admin":          IntentAdmin,
	"administrative": IntentAdmin,
	"administration": IntentAdmin,
	"clerical":       IntentAdmin,
	"control":        IntentControl,
	"controls":       IntentControl,
	"compliance":     IntentControl,
	"check":          IntentControl,
	"audit":          IntentControl,
	"decision":       IntentDecision,
	"decide":         IntentDecision,
	"judgement":      IntentDecision,
	"judgment":       IntentDecision,
	"approval":       IntentDecision,
	"relationship":   IntentRelationship,
	"relational":     IntentRelationship,
	"relationships":  IntentRelationship,
	"stakeholder":    IntentRelationship,
	"negotiation":    IntentRelationship,
}

// NormalizeIntent maps free text to an Intent. Unknown input is IntentNone.
func NormalizeIntent(raw string) Intent {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.TrimSuffix(key, "-type")
	return intentSynonyms[key]
}

// PlainText removes control characters, turns line breaks and tabs into
// spaces and collapses runs of whitespace.
func PlainText(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r), r == unicode.ReplacementChar:
			continue
		case unicode.Is(unicode.Cf, r):
			continue
		}
		if space && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		space = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// TruncateLabel keeps the first n words of s.
func TruncateLabel(s string, n int) string {
	words := strings.Fields(s)
	if n > 0 && len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// Normalize cleans a decoded document in place so renderers only ever see
// plain text, canonical actors and lists within their declared maximum.
func Normalize(doc *WorkflowDocument, contract Contract) {
	ensureCollections(doc)

	doc.Domain = PlainText(doc.Domain)
	doc.Process = PlainText(doc.Process)
	doc.SubProcess = PlainText(doc.SubProcess)

	doc.TodaySteps = normalizeSteps(doc.TodaySteps, "today_steps", contract, true)
	doc.FutureSteps = normalizeSteps(doc.FutureSteps, "future_steps", contract, false)

	doc.Assumptions = capList(cleanStrings(doc.Assumptions), "assumptions", contract)
	doc.Deltas = capList(cleanStrings(doc.Deltas), "deltas", contract)
	doc.TimeSaved = capList(cleanStrings(doc.TimeSaved), "time_saved", contract)
	doc.KPIs = capList(cleanStrings(doc.KPIs), "kpis", contract)
	doc.Notes = capList(cleanStrings(doc.Notes), "notes", contract)

	for i := range doc.Opportunities {
		o := &doc.Opportunities[i]
		o.Activity = PlainText(o.Activity)
		o.AICanDo = PlainText(o.AICanDo)
		o.Risk = PlainText(o.Risk)
		o.Guardrail = PlainText(o.Guardrail)
	}
	doc.Opportunities = capList(doc.Opportunities, "opportunities", contract)

	for i := range doc.ToolSuggestions {
		t := &doc.ToolSuggestions[i]
		t.Category = PlainText(t.Category)
		t.Why = PlainText(t.Why)
		t.Examples = cleanStrings(t.Examples)
	}
	doc.ToolSuggestions = capList(doc.ToolSuggestions, "tool_suggestions", contract)

	for i := range doc.Glossary {
		g := &doc.Glossary[i]
		g.Term = PlainText(g.Term)
		g.Definition = PlainText(g.Definition)
	}
	doc.Glossary = capList(doc.Glossary, "glossary", contract)
}

func normalizeSteps(steps []Step, field string, contract Contract, today bool) []Step {
	steps = dropBlankSteps(steps, field)
	steps = capList(steps, field, contract)
	seen := make(map[string]bool, len(steps))

	for i := range steps {
		s := &steps[i]

		s.ID = PlainText(s.ID)
		if s.ID != "" {
			if seen[s.ID] {
				log.WithFields(log.Fields{"field": field, "id": s.ID}).Warn("duplicate step id cleared")
				s.ID = ""
			} else {
				seen[s.ID] = true
			}
		}

		s.Detail = PlainText(s.Detail)
		s.Label = TruncateLabel(PlainText(s.Label), contract.LabelMaxWords)
		if s.Label == "" {
			s.Label = TruncateLabel(s.Detail, contract.LabelMaxWords)
		}
		if s.Label == "" {
			s.Label = fmt.Sprintf("Step %d", i+1)
		}

		if !s.Actor.Valid() {
			s.Actor = ActorHuman
		}
		if today && s.Actor.Has(ActorAI) {
			s.Actor &^= ActorAI
			if s.Actor == 0 {
				s.Actor = ActorHuman
			}
		}

		mapsTo := make([]string, 0, len(s.MapsTo))
		for _, id := range s.MapsTo {
			if id = PlainText(id); id != "" {
				mapsTo = append(mapsTo, id)
			}
		}
		s.MapsTo = mapsTo
	}
	return steps
}

// dropBlankSteps removes entries with no id, label or detail, such as null,
// {} or "". They must not count toward a list minimum.
func dropBlankSteps(steps []Step, field string) []Step {
	out := make([]Step, 0, len(steps))
	for _, s := range steps {
		if PlainText(s.ID) == "" && PlainText(s.Label) == "" && PlainText(s.Detail) == "" {
			continue
		}
		out = append(out, s)
	}
	if dropped := len(steps) - len(out); dropped > 0 {
		log.WithFields(log.Fields{"field": field, "dropped": dropped}).Warn("blank steps dropped")
	}
	return out
}

func cleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = PlainText(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func capList[T any](items []T, field string, contract Contract) []T {
	spec, ok := contract.Field(field)
	if !ok || spec.Max == 0 || len(items) <= spec.Max {
		return items
	}
	log.WithFields(log.Fields{"field": field, "count": len(items), "max": spec.Max}).Warn("list trimmed to contract maximum")
	return items[:spec.Max]
}
