package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stretchr/testify/mock"
)

// lensFixture builds a lens-mode response with the given step counts and
// future-step actor.
func lensFixture(todayCount, futureCount int, futureActor string) map[string]any {
	today := make([]map[string]any, 0, todayCount)
	for i := 1; i <= todayCount; i++ {
		today = append(today, map[string]any{
			"id":     fmt.Sprintf("T%d", i),
			"label":  fmt.Sprintf("Manual step %d", i),
			"actor":  "human",
			"detail": "rekeying between systems",
		})
	}
	future := make([]map[string]any, 0, futureCount)
	for i := 1; i <= futureCount; i++ {
		future = append(future, map[string]any{
			"id":      fmt.Sprintf("F%d", i),
			"label":   fmt.Sprintf("Assisted step %d", i),
			"actor":   futureActor,
			"intent":  "decision",
			"maps_to": []string{fmt.Sprintf("T%d", i)},
		})
	}
	return map[string]any{
		"domain":       "Finance",
		"process":      "Record-to-Report (R2R)",
		"sub_process":  "Reconciliations",
		"today_steps":  today,
		"future_steps": future,
		"assumptions":  []string{"ERP in place", "Shared services model", "Monthly close"},
		"deltas":       []string{"Fewer handoffs", "Exception-based review", "Auto-drafted entries"},
		"opportunities": []map[string]any{
			{"activity": "Matching", "ai_can_do": "Suggest matches", "risk": "False match", "guardrail": "Human approval"},
			{"activity": "Variance", "ai_can_do": "Explain variance", "risk": "Wrong driver", "guardrail": "Review"},
			{"activity": "Journals", "ai_can_do": "Draft entries", "risk": "Misposting", "guardrail": "Threshold"},
			{"activity": "Checklist", "ai_can_do": "Track tasks", "risk": "Missed task", "guardrail": "Owner sign-off"},
		},
		"tool_suggestions": []map[string]any{
			{"category": "Finance close / controls automation", "examples": []string{"BlackLine"}, "why": "Reconciliations"},
			{"category": "Analytics / BI", "examples": []string{"Power BI"}, "why": "KPI monitoring"},
		},
		"time_saved": []string{"Matching", "Rekeying", "Chasing approvals"},
		"kpis":       []string{"Days to close", "Auto-match rate", "Manual journals", "Exceptions"},
	}
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// mockGenerator is a testify mock of Generator.
type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Name() string { return "mock" }

func (m *mockGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
