package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/workflow-lens/internal/core"
	"github.com/dhabedank/workflow-lens/internal/service"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Name() string { return "mock" }

func (m *mockGenerator) Generate(ctx context.Context, req core.GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func lensJSON() string {
	var today, future []map[string]any
	for i := 1; i <= 6; i++ {
		today = append(today, map[string]any{"id": fmt.Sprintf("T%d", i), "label": fmt.Sprintf("Manual step %d", i), "actor": "HUMAN"})
		future = append(future, map[string]any{"id": fmt.Sprintf("F%d", i), "label": fmt.Sprintf("Assisted step %d", i), "actor": "AI+HUMAN", "maps_to": []string{fmt.Sprintf("T%d", i)}})
	}
	data, _ := json.Marshal(map[string]any{
		"today_steps":      today,
		"future_steps":     future,
		"assumptions":      []string{"a", "b", "c"},
		"deltas":           []string{"a", "b", "c"},
		"opportunities":    []map[string]string{{"activity": "a"}, {"activity": "b"}, {"activity": "c"}, {"activity": "d"}},
		"tool_suggestions": []map[string]string{{"category": "RPA"}, {"category": "Process mining"}},
		"time_saved":       []string{"a", "b", "c"},
		"kpis":             []string{"a", "b", "c", "d"},
	})
	return string(data)
}

func newTestServer(t *testing.T, gen core.Generator) *Server {
	t.Helper()
	s, err := New(Options{
		Service: service.New(service.Options{Generator: gen}),
		Health:  func() map[string]any { return map[string]any{"taxonomy_reloads": 0} },
	})
	require.NoError(t, err)
	return s
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestNew_RequiresService(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, new(mockGenerator))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/?process="+url.QueryEscape("Source-to-Settle (S2S)"), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>2026 Workflow Shift Lens</title>")
	assert.Contains(t, body, `<option value="Source-to-Settle (S2S)" selected>`)
	assert.Contains(t, body, "<option>Supplier onboarding</option>")
	assert.Contains(t, body, `name="domain" value="Purchasing / Procurement"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/?process=nope", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="process" value="Source-to-Settle (S2S)"`, "unknown process falls back to the first")
}

func TestGenerate_RendersResult(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("Sure! "+lensJSON(), nil).Once()
	s := newTestServer(t, gen)

	rec := serve(s, postForm(url.Values{
		"domain":      {"Finance"},
		"process":     {"Record-to-Report (R2R)"},
		"focus":       {"Reconciliations"},
		"constraints": {"Regulated industry", "Multiple ERPs"},
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, "lens-result")
	assert.Contains(t, body, "Assisted step 1")
	assert.Contains(t, body, `name="constraints" value="Multiple ERPs"`, "regenerate form keeps the selection")
	gen.AssertExpectations(t)
}

func TestGenerate_InputErrorRerendersForm(t *testing.T) {
	gen := new(mockGenerator)
	s := newTestServer(t, gen)

	rec := serve(s, postForm(url.Values{
		"domain":  {"Finance"},
		"process": {"Record-to-Report (R2R)"},
		"focus":   {"Payroll"},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="problem"`)
	assert.Contains(t, rec.Body.String(), "Payroll")
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerate_FailurePages(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		repair  string
		err     error
		status  int
		want    []string
	}{
		{
			name:   "provider failure",
			err:    &core.GenerationFailure{Kind: core.FailureRateLimited, Provider: "mock", StatusCode: 429},
			status: http.StatusBadGateway,
			want:   []string{"Model provider unavailable", "Try again"},
		},
		{
			name:    "repair failure shows both payloads",
			primary: `{"today_steps": [`,
			repair:  "still not json",
			status:  http.StatusUnprocessableEntity,
			want:    []string{"Unreadable model output", `{&#34;today_steps&#34;: [`, "still not json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mockGenerator)
			isRepair := mock.MatchedBy(func(req core.GenerationRequest) bool { return req.System == core.RepairSystemPrompt })
			isPrimary := mock.MatchedBy(func(req core.GenerationRequest) bool { return req.System == core.SystemPrompt })
			gen.On("Generate", mock.Anything, isPrimary).Return(tt.primary, tt.err).Once()
			if tt.err == nil {
				gen.On("Generate", mock.Anything, isRepair).Return(tt.repair, nil).Once()
			}
			s := newTestServer(t, gen)

			rec := serve(s, postForm(url.Values{"domain": {"Finance"}, "process": {"Record-to-Report (R2R)"}}))
			assert.Equal(t, tt.status, rec.Code)
			for _, want := range tt.want {
				assert.Contains(t, rec.Body.String(), want)
			}
			gen.AssertExpectations(t)
		})
	}
}

func TestAPIGenerate(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(lensJSON(), nil).Once()
	s := newTestServer(t, gen)

	rec := serve(s, postJSON(`{"domain":"Finance","process":"Record-to-Report (R2R)","focus":"Reconciliations"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, rec.Header().Get("X-Request-Id"), body["request_id"])
	doc := body["document"].(map[string]any)
	assert.Equal(t, "Reconciliations", doc["sub_process"])
}

func TestAPIGenerate_Problems(t *testing.T) {
	t.Run("input error", func(t *testing.T) {
		s := newTestServer(t, new(mockGenerator))
		rec := serve(s, postJSON(`{"domain":"Marketing","process":"x"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	})

	t.Run("schema violation carries raw", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, mock.Anything).Return(`{"today_steps": []}`, nil).Once()
		s := newTestServer(t, gen)

		rec := serve(s, postJSON(`{"domain":"Finance","process":"Record-to-Report (R2R)"}`))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var p problem
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, "Incomplete answer", p.Title)
		assert.Equal(t, `{"today_steps": []}`, p.Raw)
		assert.NotEmpty(t, p.Problems)
		assert.Empty(t, p.RepairRaw)
	})

	t.Run("repair failure carries both payloads", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, mock.MatchedBy(func(req core.GenerationRequest) bool {
			return req.System == core.SystemPrompt
		})).Return(`{"today_steps": [`, nil).Once()
		gen.On("Generate", mock.Anything, mock.MatchedBy(func(req core.GenerationRequest) bool {
			return req.System == core.RepairSystemPrompt
		})).Return("", &core.GenerationFailure{Kind: core.FailureService, Err: errors.New("overloaded")}).Once()
		s := newTestServer(t, gen)

		rec := serve(s, postJSON(`{"domain":"Finance","process":"Record-to-Report (R2R)"}`))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var p problem
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, `{"today_steps": [`, p.Raw)
	})

	t.Run("rejected repair carries both payloads", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, mock.MatchedBy(func(req core.GenerationRequest) bool {
			return req.System == core.SystemPrompt
		})).Return(`{"today_steps": [`, nil).Once()
		gen.On("Generate", mock.Anything, mock.MatchedBy(func(req core.GenerationRequest) bool {
			return req.System == core.RepairSystemPrompt
		})).Return(`{"today_steps": []}`, nil).Once()
		s := newTestServer(t, gen)

		rec := serve(s, postJSON(`{"domain":"Finance","process":"Record-to-Report (R2R)"}`))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var p problem
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, "Incomplete answer", p.Title)
		assert.Equal(t, `{"today_steps": [`, p.Raw)
		assert.Equal(t, `{"today_steps": []}`, p.RepairRaw)
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t, new(mockGenerator))
		rec := serve(s, postJSON(`{"domain":`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTaxonomyAndHealth(t *testing.T) {
	s := newTestServer(t, new(mockGenerator))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/taxonomy", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var catalog struct {
		Year    int `json:"year"`
		Domains []struct {
			Name string `json:"name"`
		} `json:"domains"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	assert.Equal(t, 2026, catalog.Year)
	assert.Len(t, catalog.Domains, 5)

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","taxonomy_reloads":0}`, rec.Body.String())
}

func TestBodyLimit(t *testing.T) {
	s := newTestServer(t, new(mockGenerator))
	rec := serve(s, postJSON(`{"context":"`+strings.Repeat("x", 70*1024)+`"}`))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&service.InputError{Field: "domain"}))
	assert.Equal(t, http.StatusBadGateway, statusFor(&core.GenerationFailure{Kind: core.FailureTimeout}))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&core.RepairFailure{Err: &core.GenerationFailure{}}))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&core.SchemaViolation{}))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(&core.ParseError{Reason: core.ReasonNoObject}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
