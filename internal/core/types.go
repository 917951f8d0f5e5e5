package core

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

// Intent is a coarse classification of what a step is for.
type Intent string

const (
	IntentNone         Intent = ""
	IntentAdmin        Intent = "admin"
	IntentControl      Intent = "control"
	IntentDecision     Intent = "decision"
	IntentRelationship Intent = "relationship"
)

// Step is one entry of the current or target workflow.
type Step struct {
	ID     string   `json:"id,omitempty"`     // Unique within its list, e.g. "T3"
	Label  string   `json:"label"`            // 1-3 words
	Actor  Actor    `json:"actor"`            // Canonical owner
	Intent Intent   `json:"intent,omitempty"` // Optional classification
	MapsTo []string `json:"maps_to"`          // Today ids this step absorbs
	Detail string   `json:"detail,omitempty"` // Friction today, control in the target state
}

// Opportunity is an activity where AI can help, with its risk and guardrail.
type Opportunity struct {
	Activity  string `json:"activity"`
	AICanDo   string `json:"ai_can_do"`
	Risk      string `json:"risk"`
	Guardrail string `json:"guardrail"`
}

// ToolSuggestion names a tool category from the library and why it fits.
type ToolSuggestion struct {
	Category string   `json:"category"`
	Examples []string `json:"examples"`
	Why      string   `json:"why"`
}

// GlossaryEntry defines a term used in the document.
type GlossaryEntry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// WorkflowDocument is the full parsed response for one generation.
type WorkflowDocument struct {
	Domain          string           `json:"domain"`
	Process         string           `json:"process"`
	SubProcess      string           `json:"sub_process"`
	TodaySteps      []Step           `json:"today_steps"`
	FutureSteps     []Step           `json:"future_steps"`
	Assumptions     []string         `json:"assumptions"`
	Deltas          []string         `json:"deltas"`
	Opportunities   []Opportunity    `json:"opportunities"`
	ToolSuggestions []ToolSuggestion `json:"tool_suggestions"`
	Glossary        []GlossaryEntry  `json:"glossary"`
	TimeSaved       []string         `json:"time_saved"`
	KPIs            []string         `json:"kpis"`
	Notes           []string         `json:"notes"`
}

// TodayLabel resolves a today-step id to its label.
func (d *WorkflowDocument) TodayLabel(id string) (string, bool) {
	for _, s := range d.TodaySteps {
		if s.ID != "" && s.ID == id {
			return s.Label, true
		}
	}
	return "", false
}

// ToolCategory is one entry of the controlled tool library.
type ToolCategory struct {
	Category string   `json:"category" yaml:"category"`
	Examples []string `json:"examples" yaml:"examples"`
	BestFor  string   `json:"best_for" yaml:"best_for"`
}

// Selection is everything the user chose, plus taxonomy facts about it.
type Selection struct {
	Domain       string
	Process      string
	Focus        string
	Industry     string
	Maturity     string
	Constraints  []string
	Context      string
	CustomSteps  []string
	Goal         string
	DefaultSteps []string
	ToolLibrary  []ToolCategory
	Year         int
}

// GenerationRequest is one independent call to the generation collaborator.
type GenerationRequest struct {
	System    string
	User      string
	MaxTokens int

	// Contract is a hint for providers that accept a response schema.
	Contract *Contract
}

// Generator is the interface for text-generation providers used by the pipeline.
// This matches llm.Adapter but is defined here to avoid import cycles.
type Generator interface {
	// Name returns the provider identifier for logging.
	Name() string

	// Generate returns raw model text or a *GenerationFailure.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// text decodes any JSON scalar leniently into a string. Lists of scalars are
// joined with "; ", objects and null become empty.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	*t = text(flattenText(data))
	return nil
}

func flattenText(data []byte) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		return strconv.FormatBool(b)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if s := flattenText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

// texts decodes a list of scalars, or a single scalar as a one-item list.
type texts []string

func (t *texts) UnmarshalJSON(data []byte) error {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		if s := flattenText(data); s != "" {
			*t = texts{s}
		}
		return nil
	}
	out := make(texts, 0, len(list))
	for _, item := range list {
		out = append(out, flattenText(item))
	}
	*t = out
	return nil
}

// UnmarshalJSON accepts the loose shapes models produce for steps: a bare
// string becomes the label, "name" stands in for "label", and "friction" or
// "control" stand in for "detail".
func (s *Step) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		*s = Step{Label: bare, Actor: ActorHuman}
		return nil
	}

	var aux struct {
		ID       text            `json:"id"`
		Step     text            `json:"step"`
		Label    text            `json:"label"`
		Name     text            `json:"name"`
		Actor    json.RawMessage `json:"actor"`
		Intent   text            `json:"intent"`
		MapsTo   texts           `json:"maps_to"`
		Detail   text            `json:"detail"`
		Friction text            `json:"friction"`
		Control  text            `json:"control"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		*s = Step{Label: flattenText(data), Actor: ActorHuman}
		return nil
	}

	s.ID = firstNonEmpty(string(aux.ID), string(aux.Step))
	s.Label = firstNonEmpty(string(aux.Label), string(aux.Name))
	s.Actor = NormalizeActor(actorText(aux.Actor))
	s.Intent = NormalizeIntent(string(aux.Intent))
	s.MapsTo = []string(aux.MapsTo)
	s.Detail = firstNonEmpty(string(aux.Detail), string(aux.Friction), string(aux.Control))
	return nil
}

func (o *Opportunity) UnmarshalJSON(data []byte) error {
	var aux struct {
		Activity  text `json:"activity"`
		AICanDo   text `json:"ai_can_do"`
		Risk      text `json:"risk"`
		Guardrail text `json:"guardrail"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		*o = Opportunity{Activity: flattenText(data)}
		return nil
	}
	*o = Opportunity{
		Activity:  string(aux.Activity),
		AICanDo:   string(aux.AICanDo),
		Risk:      string(aux.Risk),
		Guardrail: string(aux.Guardrail),
	}
	return nil
}

func (t *ToolSuggestion) UnmarshalJSON(data []byte) error {
	var aux struct {
		Category     text  `json:"category"`
		ToolCategory text  `json:"tool_category"`
		Examples     texts `json:"examples"`
		Why          text  `json:"why"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		*t = ToolSuggestion{Category: flattenText(data)}
		return nil
	}
	*t = ToolSuggestion{
		Category: firstNonEmpty(string(aux.Category), string(aux.ToolCategory)),
		Examples: []string(aux.Examples),
		Why:      string(aux.Why),
	}
	return nil
}

func (g *GlossaryEntry) UnmarshalJSON(data []byte) error {
	var aux struct {
		Term       text `json:"term"`
		Definition text `json:"definition"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		*g = GlossaryEntry{Term: flattenText(data)}
		return nil
	}
	*g = GlossaryEntry{Term: string(aux.Term), Definition: string(aux.Definition)}
	return nil
}

// DecodeDocument maps a parsed object onto a WorkflowDocument. Absent
// collections come back as empty slices.
func DecodeDocument(obj Object) (*WorkflowDocument, error) {
	var aux struct {
		Domain          text             `json:"domain"`
		Process         text             `json:"process"`
		SubProcess      text             `json:"sub_process"`
		TodaySteps      []Step           `json:"today_steps"`
		FutureSteps     []Step           `json:"future_steps"`
		Assumptions     texts            `json:"assumptions"`
		Deltas          texts            `json:"deltas"`
		Opportunities   []Opportunity    `json:"opportunities"`
		ToolSuggestions []ToolSuggestion `json:"tool_suggestions"`
		Glossary        []GlossaryEntry  `json:"glossary"`
		TimeSaved       texts            `json:"time_saved"`
		KPIs            texts            `json:"kpis"`
		Notes           texts            `json:"notes"`
	}
	if err := json.Unmarshal(obj.Raw, &aux); err != nil {
		return nil, &SchemaViolation{Problems: []string{"document: " + err.Error()}, Raw: string(obj.Raw)}
	}

	doc := &WorkflowDocument{
		Domain:          string(aux.Domain),
		Process:         string(aux.Process),
		SubProcess:      string(aux.SubProcess),
		TodaySteps:      aux.TodaySteps,
		FutureSteps:     aux.FutureSteps,
		Assumptions:     []string(aux.Assumptions),
		Deltas:          []string(aux.Deltas),
		Opportunities:   aux.Opportunities,
		ToolSuggestions: aux.ToolSuggestions,
		Glossary:        aux.Glossary,
		TimeSaved:       []string(aux.TimeSaved),
		KPIs:            []string(aux.KPIs),
		Notes:           []string(aux.Notes),
	}
	ensureCollections(doc)
	return doc, nil
}

func ensureCollections(doc *WorkflowDocument) {
	if doc.TodaySteps == nil {
		doc.TodaySteps = []Step{}
	}
	if doc.FutureSteps == nil {
		doc.FutureSteps = []Step{}
	}
	if doc.Assumptions == nil {
		doc.Assumptions = []string{}
	}
	if doc.Deltas == nil {
		doc.Deltas = []string{}
	}
	if doc.Opportunities == nil {
		doc.Opportunities = []Opportunity{}
	}
	if doc.ToolSuggestions == nil {
		doc.ToolSuggestions = []ToolSuggestion{}
	}
	if doc.Glossary == nil {
		doc.Glossary = []GlossaryEntry{}
	}
	if doc.TimeSaved == nil {
		doc.TimeSaved = []string{}
	}
	if doc.KPIs == nil {
		doc.KPIs = []string{}
	}
	if doc.Notes == nil {
		doc.Notes = []string{}
	}
	for i := range doc.TodaySteps {
		if doc.TodaySteps[i].MapsTo == nil {
			doc.TodaySteps[i].MapsTo = []string{}
		}
	}
	for i := range doc.FutureSteps {
		if doc.FutureSteps[i].MapsTo == nil {
			doc.FutureSteps[i].MapsTo = []string{}
		}
	}
	for i := range doc.ToolSuggestions {
		if doc.ToolSuggestions[i].Examples == nil {
			doc.ToolSuggestions[i].Examples = []string{}
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
