package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"unchanged", "Invoice capture", "Invoice capture"},
		{"newlines and tabs", "Invoice\ncapture\tnow", "Invoice capture now"},
		{"control chars", "bell\x07 and\x00 nul", "bell and nul"},
		{"collapse and trim", "  a   b  ", "a b"},
		{"zero width", "a\u200bb", "ab"},
		{"escape sequence", "\x1b[31mred\x1b[0m", "[31mred[0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PlainText(tt.input))
		})
	}
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "Three way match", TruncateLabel("Three way match exceptions resolve", 3))
	assert.Equal(t, "PO issue", TruncateLabel("  PO   issue ", 3))
	assert.Equal(t, "", TruncateLabel("", 3))
	assert.Equal(t, "a b c d", TruncateLabel("a b c d", 0))
}

func TestNormalizeIntent(t *testing.T) {
	tests := []struct {
		input    string
		expected Intent
	}{
		{"admin", IntentAdmin},
		{"Administrative", IntentAdmin},
		{"control-type", IntentControl},
		{"compliance", IntentControl},
		{"Judgement", IntentDecision},
		{"relationship", IntentRelationship},
		{"", IntentNone},
		{"vibes", IntentNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeIntent(tt.input), tt.input)
	}
}

func TestNormalize_Steps(t *testing.T) {
	doc := &WorkflowDocument{
		TodaySteps: []Step{
			{ID: "T1", Label: "Request intake from the business", Actor: ActorAI | ActorERP},
			{ID: "T1", Label: "Approvals\n", Actor: ActorAI},
			{ID: "T3", Label: "  ", Actor: Actor(0)},
		},
		FutureSteps: []Step{
			{ID: "F1", Label: "Auto intake", Actor: ActorAI | ActorHuman, MapsTo: []string{"T1", " ", "T9"}},
		},
	}

	Normalize(doc, ContractFor(ModeMapping))

	require.Len(t, doc.TodaySteps, 3)
	assert.Equal(t, "Request intake from", doc.TodaySteps[0].Label)
	assert.Equal(t, ActorERP, doc.TodaySteps[0].Actor)
	assert.Equal(t, "", doc.TodaySteps[1].ID, "duplicate id cleared")
	assert.Equal(t, "Approvals", doc.TodaySteps[1].Label)
	assert.Equal(t, ActorHuman, doc.TodaySteps[1].Actor)
	assert.Equal(t, "Step 3", doc.TodaySteps[2].Label)
	assert.Equal(t, ActorHuman, doc.TodaySteps[2].Actor)

	assert.Equal(t, ActorAI|ActorHuman, doc.FutureSteps[0].Actor)
	assert.Equal(t, []string{"T1", "T9"}, doc.FutureSteps[0].MapsTo)

	assert.NotNil(t, doc.Assumptions)
	assert.NotNil(t, doc.Glossary)
	assert.NotNil(t, doc.TodaySteps[0].MapsTo)
}

func TestNormalize_DropsBlankSteps(t *testing.T) {
	doc := &WorkflowDocument{
		TodaySteps: []Step{
			{Actor: ActorHuman},
			{ID: "T2", Label: "Match lines", Actor: ActorHuman},
			{Label: " \n ", Actor: ActorHuman},
			{Detail: "chasing missing receipts by email", Actor: ActorHuman},
		},
	}

	Normalize(doc, ContractFor(ModeLens))

	require.Len(t, doc.TodaySteps, 2)
	assert.Equal(t, "Match lines", doc.TodaySteps[0].Label)
	assert.Equal(t, "chasing missing receipts", doc.TodaySteps[1].Label, "detail stands in for a missing label")
}

func TestNormalize_TrimsToMaximum(t *testing.T) {
	doc := &WorkflowDocument{
		Assumptions: []string{"a", "b", "c", "d", "e", "f", "g"},
		Notes:       []string{"1", "", "2", "3", "4"},
	}
	Normalize(doc, ContractFor(ModeLens))
	assert.Len(t, doc.Assumptions, 5)
	assert.Equal(t, []string{"1", "2", "3"}, doc.Notes)
}

func TestDecodeDocument_Lenient(t *testing.T) {
	raw := `{
		"today_steps": [
			{"step": 1, "name": "Requisition", "actor": ["Human", "System"], "friction": "paper forms"},
			"Budget check",
			{"id": "T3", "label": "Approvals", "actor": null, "intent": "Approval"}
		],
		"future_steps": [
			{"id": 1, "label": "Smart intake", "actor": "ai + human", "maps_to": "T1", "control": "audit trail"},
			{"id": "F2", "label": "Match", "actor": "AI", "maps_to": [1, "T3"]}
		],
		"assumptions": "single assumption",
		"tool_suggestions": [{"tool_category": "RPA", "examples": "UiPath", "why": 3}],
		"glossary": [{"term": "PO", "definition": "Purchase order"}],
		"kpis": ["Cycle time", 42, true]
	}`

	obj, err := ParseObject(raw)
	require.NoError(t, err)
	doc, err := DecodeDocument(obj)
	require.NoError(t, err)

	require.Len(t, doc.TodaySteps, 3)
	assert.Equal(t, Step{ID: "1", Label: "Requisition", Actor: ActorERP | ActorHuman, Detail: "paper forms", MapsTo: []string{}}, doc.TodaySteps[0])
	assert.Equal(t, "Budget check", doc.TodaySteps[1].Label)
	assert.Equal(t, ActorHuman, doc.TodaySteps[2].Actor)
	assert.Equal(t, IntentDecision, doc.TodaySteps[2].Intent)

	assert.Equal(t, "1", doc.FutureSteps[0].ID)
	assert.Equal(t, ActorAI|ActorHuman, doc.FutureSteps[0].Actor)
	assert.Equal(t, []string{"T1"}, doc.FutureSteps[0].MapsTo)
	assert.Equal(t, "audit trail", doc.FutureSteps[0].Detail)
	assert.Equal(t, []string{"1", "T3"}, doc.FutureSteps[1].MapsTo)

	assert.Equal(t, []string{"single assumption"}, doc.Assumptions)
	assert.Equal(t, ToolSuggestion{Category: "RPA", Examples: []string{"UiPath"}, Why: "3"}, doc.ToolSuggestions[0])
	assert.Equal(t, []string{"Cycle time", "42", "true"}, doc.KPIs)

	assert.Equal(t, []string{}, doc.Deltas)
	assert.Equal(t, []Opportunity{}, doc.Opportunities)
}

func TestWorkflowDocument_ValidateAndWarnings(t *testing.T) {
	obj, err := ParseObject(mustJSON(lensFixture(6, 6, "AI")))
	require.NoError(t, err)
	doc, err := DecodeDocument(obj)
	require.NoError(t, err)
	Normalize(doc, ContractFor(ModeLens))
	require.NoError(t, doc.Validate(ContractFor(ModeLens)))
	assert.Empty(t, doc.Warnings())

	doc.FutureSteps[0].MapsTo = []string{"T99"}
	assert.Equal(t, []string{`future step "Assisted step 1" maps to unknown step "T99"`}, doc.Warnings())

	doc.Assumptions = []string{"only one"}
	var sv *SchemaViolation
	assert.ErrorAs(t, doc.Validate(ContractFor(ModeLens)), &sv)
}
