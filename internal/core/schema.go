package core

import (
	"fmt"
	"maps"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Mode selects which contract a generation request is held to.
type Mode string

const (
	// ModeLens is the full before/after view with opportunities and impact.
	ModeLens Mode = "lens"
	// ModeMapping restates user-supplied steps and maps future steps onto them.
	ModeMapping Mode = "mapping"
)

// ParseMode converts user input to a Mode. Empty input means ModeLens.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLens:
		return ModeLens, nil
	case ModeMapping:
		return ModeMapping, nil
	default:
		return "", &ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q (lens/mapping)", s)}
	}
}

// FieldKind is the JSON shape a contract field must have.
type FieldKind int

const (
	KindString FieldKind = iota
	KindStringList
	KindStepList
	KindRecordList
)

func (k FieldKind) String() string {
	switch k {
	case KindStringList:
		return "array of strings"
	case KindStepList:
		return "array of step objects"
	case KindRecordList:
		return "array of objects"
	default:
		return "string"
	}
}

// IsList reports whether the kind is a JSON array.
func (k FieldKind) IsList() bool {
	return k != KindString
}

// FieldSpec declares one top-level field of the response.
type FieldSpec struct {
	Name        string
	Kind        FieldKind
	Required    bool
	Min         int
	Max         int      // 0 means unbounded
	Keys        []string // object keys for record and step lists
	Description string
}

// Bounds renders the cardinality as "6-10" or "0+".
func (f FieldSpec) Bounds() string {
	if f.Max == 0 {
		return fmt.Sprintf("%d+", f.Min)
	}
	return fmt.Sprintf("%d-%d", f.Min, f.Max)
}

// Contract is the declared shape of one generation mode's response.
type Contract struct {
	Mode          Mode
	LabelMaxWords int
	Fields        []FieldSpec
}

// MaxMappedSteps is the most user-supplied steps mapping mode restates.
const MaxMappedSteps = 15

var stepKeys = []string{"id", "label", "actor", "intent", "maps_to", "detail"}

// ContractFor returns the static contract for a mode.
func ContractFor(mode Mode) Contract {
	if mode == ModeMapping {
		return Contract{
			Mode:          ModeMapping,
			LabelMaxWords: 3,
			Fields: []FieldSpec{
				{Name: "domain", Kind: KindString, Description: "echo of the selected domain"},
				{Name: "process", Kind: KindString, Description: "echo of the selected process"},
				{Name: "sub_process", Kind: KindString, Description: "echo of the selected focus area"},
				{Name: "today_steps", Kind: KindStepList, Required: true, Min: 4, Max: MaxMappedSteps, Keys: stepKeys,
					Description: "the supplied current steps restated in order with ids T1..Tn; actor is HUMAN, ERP or ERP+HUMAN only"},
				{Name: "future_steps", Kind: KindStepList, Required: true, Min: 4, Max: 12, Keys: stepKeys,
					Description: "target-state steps with ids F1..Fn; maps_to lists the today ids each step absorbs"},
				{Name: "assumptions", Kind: KindStringList, Required: true, Min: 2, Max: 5},
				{Name: "deltas", Kind: KindStringList, Required: true, Min: 3, Max: 6,
					Description: "what changes between today and the target state"},
				{Name: "opportunities", Kind: KindRecordList, Min: 0, Max: 6,
					Keys: []string{"activity", "ai_can_do", "risk", "guardrail"}},
				{Name: "tool_suggestions", Kind: KindRecordList, Min: 0, Max: 4,
					Keys: []string{"category", "examples", "why"}},
				{Name: "glossary", Kind: KindRecordList, Min: 0, Max: 8, Keys: []string{"term", "definition"}},
				{Name: "time_saved", Kind: KindStringList, Min: 0, Max: 6},
				{Name: "kpis", Kind: KindStringList, Min: 0, Max: 8},
				{Name: "notes", Kind: KindStringList, Min: 0, Max: 5},
			},
		}
	}

	return Contract{
		Mode:          ModeLens,
		LabelMaxWords: 3,
		Fields: []FieldSpec{
			{Name: "domain", Kind: KindString, Description: "echo of the selected domain"},
			{Name: "process", Kind: KindString, Description: "echo of the selected process"},
			{Name: "sub_process", Kind: KindString, Description: "echo of the selected focus area"},
			{Name: "today_steps", Kind: KindStepList, Required: true, Min: 6, Max: 10, Keys: stepKeys,
				Description: "current workflow; actor is HUMAN, ERP or ERP+HUMAN only; detail names the friction"},
			{Name: "future_steps", Kind: KindStepList, Required: true, Min: 6, Max: 10, Keys: stepKeys,
				Description: "AI-augmented workflow; detail names the control or guardrail"},
			{Name: "assumptions", Kind: KindStringList, Required: true, Min: 3, Max: 5},
			{Name: "deltas", Kind: KindStringList, Required: true, Min: 3, Max: 6,
				Description: "what changes between today and the target state"},
			{Name: "opportunities", Kind: KindRecordList, Required: true, Min: 4, Max: 8,
				Keys: []string{"activity", "ai_can_do", "risk", "guardrail"}},
			{Name: "tool_suggestions", Kind: KindRecordList, Required: true, Min: 2, Max: 6,
				Keys: []string{"category", "examples", "why"},
				Description: "category must come from the tool library"},
			{Name: "glossary", Kind: KindRecordList, Min: 0, Max: 6, Keys: []string{"term", "definition"}},
			{Name: "time_saved", Kind: KindStringList, Required: true, Min: 3, Max: 6},
			{Name: "kpis", Kind: KindStringList, Required: true, Min: 4, Max: 8},
			{Name: "notes", Kind: KindStringList, Min: 0, Max: 3},
		},
	}
}

// Field looks up a field by name.
func (c Contract) Field(name string) (FieldSpec, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Describe renders the contract as prompt text.
func (c Contract) Describe() string {
	var sb strings.Builder
	sb.WriteString("Return ONE JSON object with exactly these top-level keys:\n")
	for _, f := range c.Fields {
		presence := "optional"
		if f.Required {
			presence = "required"
		}
		line := fmt.Sprintf("- %s (%s, %s", f.Name, f.Kind, presence)
		if f.Kind.IsList() {
			line += fmt.Sprintf(", %s entries", f.Bounds())
		}
		line += ")"
		if len(f.Keys) > 0 {
			line += " with keys: " + strings.Join(f.Keys, ", ")
		}
		if f.Description != "" {
			line += " - " + f.Description
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString(fmt.Sprintf("Step labels are 1-%d words. ", c.LabelMaxWords))
	sb.WriteString("actor is one of AI, ERP, HUMAN or a '+' combination such as AI+HUMAN. ")
	sb.WriteString("intent is one of admin, control, decision, relationship, or omitted.\n")
	return sb.String()
}

// Check validates presence, kind and minimum cardinality of every field.
// All problems are reported together. Lists above their maximum are not a
// violation; Normalize trims them.
func (c Contract) Check(obj Object) error {
	var problems []string
	for _, f := range c.Fields {
		r := gjson.GetBytes(obj.Raw, gjsonKey(f.Name))
		if !r.Exists() || r.Type == gjson.Null {
			if f.Required {
				problems = append(problems, fmt.Sprintf("%s: required field missing", f.Name))
			}
			continue
		}
		if !f.Kind.IsList() {
			continue
		}
		if !r.IsArray() {
			if f.Required {
				problems = append(problems, fmt.Sprintf("%s: expected %s", f.Name, f.Kind))
			}
			continue
		}
		if n := len(r.Array()); n < f.Min {
			problems = append(problems, fmt.Sprintf("%s: %d entries, need at least %d", f.Name, n, f.Min))
		}
	}
	if len(problems) > 0 {
		return &SchemaViolation{Problems: problems, Raw: string(obj.Raw)}
	}
	return nil
}

// dropMistyped removes optional record lists that arrived as something other
// than an array, so they decode as empty. Optional string lists need no help:
// a scalar decodes as a one-item list.
func (c Contract) dropMistyped(obj Object) Object {
	for _, f := range c.Fields {
		if f.Required || !f.Kind.IsList() || f.Kind == KindStringList {
			continue
		}
		key := gjsonKey(f.Name)
		r := gjson.GetBytes(obj.Raw, key)
		if !r.Exists() || r.Type == gjson.Null || r.IsArray() {
			continue
		}
		raw, err := sjson.DeleteBytes(obj.Raw, key)
		if err != nil {
			continue
		}
		log.WithFields(log.Fields{"field": f.Name, "type": r.Type.String()}).Warn("optional field is not a list, ignored")
		obj.Raw = raw
		if obj.Fields != nil {
			obj.Fields = maps.Clone(obj.Fields)
			delete(obj.Fields, f.Name)
		}
	}
	return obj
}

// gjsonKey escapes path syntax so a field name is matched literally.
func gjsonKey(name string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(name)
}
