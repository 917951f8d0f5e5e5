// Package service runs one user request end to end. The web server, the
// generate command and the picker all go through it.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dhabedank/workflow-lens/internal/core"
	"github.com/dhabedank/workflow-lens/internal/submissions"
	"github.com/dhabedank/workflow-lens/internal/taxonomy"
)

// Input limits.
const (
	MaxCustomSteps     = core.MaxMappedSteps
	MaxCustomStepChars = 80
	MaxContextChars    = 1200
)

// Form is what a user submits.
type Form struct {
	Domain      string   `json:"domain" form:"domain"`
	Process     string   `json:"process" form:"process"`
	Focus       string   `json:"focus" form:"focus"`
	Industry    string   `json:"industry,omitempty" form:"industry"`
	Maturity    string   `json:"maturity,omitempty" form:"maturity"`
	Constraints []string `json:"constraints,omitempty" form:"constraints"`
	Context     string   `json:"context,omitempty" form:"context"`
	CustomSteps string   `json:"custom_steps,omitempty" form:"custom_steps"`
	Mode        string   `json:"mode,omitempty" form:"mode"`
}

// InputError means the form itself is wrong. Nothing was sent to the model.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InputProblem is the message shown next to the form.
func (e *InputError) InputProblem() string {
	return e.Error()
}

// Options configures a Service.
type Options struct {
	Generator       core.Generator
	RepairGenerator core.Generator
	Catalog         func() *taxonomy.Catalog
	Recorder        *submissions.Recorder
	MaxTokens       int
	RepairMaxTokens int
}

// Service validates forms and runs the generation pipeline.
type Service struct {
	opts  Options
	newID func() string
}

// New creates a Service. Catalog defaults to the embedded taxonomy.
func New(opts Options) *Service {
	if opts.Catalog == nil {
		c := taxonomy.Default()
		opts.Catalog = func() *taxonomy.Catalog { return c }
	}
	return &Service{opts: opts, newID: uuid.NewString}
}

// Catalog returns the taxonomy in use.
func (s *Service) Catalog() *taxonomy.Catalog {
	return s.opts.Catalog()
}

// Prepared is a validated form ready for generation.
type Prepared struct {
	Mode      core.Mode
	Selection core.Selection
}

// Prepare validates f against the catalog and builds the selection.
func (s *Service) Prepare(f Form) (*Prepared, error) {
	catalog := s.Catalog()

	if f.Domain == "" {
		return nil, &InputError{Field: "domain", Message: "required"}
	}
	if _, ok := catalog.Domain(f.Domain); !ok {
		return nil, &InputError{Field: "domain", Message: fmt.Sprintf("unknown domain %q", f.Domain)}
	}
	process, ok := catalog.Lookup(f.Domain, f.Process)
	if !ok {
		return nil, &InputError{Field: "process", Message: fmt.Sprintf("unknown process %q in %s", f.Process, f.Domain)}
	}
	focus := f.Focus
	if focus == "" {
		focus = taxonomy.EndToEnd
	}
	if !process.HasFocus(focus) {
		return nil, &InputError{Field: "focus", Message: fmt.Sprintf("unknown focus area %q for %s", focus, process.Name)}
	}
	if f.Industry != "" && !catalog.HasIndustry(f.Industry) {
		return nil, &InputError{Field: "industry", Message: fmt.Sprintf("unknown industry %q", f.Industry)}
	}
	if f.Maturity != "" && !catalog.HasMaturity(f.Maturity) {
		return nil, &InputError{Field: "maturity", Message: fmt.Sprintf("unknown maturity level %q", f.Maturity)}
	}
	for _, c := range f.Constraints {
		if !catalog.HasConstraint(c) {
			return nil, &InputError{Field: "constraints", Message: fmt.Sprintf("unknown constraint %q", c)}
		}
	}
	userContext := core.PlainText(f.Context)
	if n := len([]rune(userContext)); n > MaxContextChars {
		return nil, &InputError{Field: "context", Message: fmt.Sprintf("%d characters, limit is %d", n, MaxContextChars)}
	}

	steps := core.ParseCustomSteps(f.CustomSteps, MaxCustomSteps, MaxCustomStepChars)

	mode := core.ModeLens
	if len(steps) > 0 {
		mode = core.ModeMapping
	}
	if strings.TrimSpace(f.Mode) != "" {
		m, err := core.ParseMode(f.Mode)
		if err != nil {
			return nil, &InputError{Field: "mode", Message: err.Error()}
		}
		mode = m
	}
	if mode == core.ModeMapping {
		need := 0
		if spec, ok := core.ContractFor(mode).Field("today_steps"); ok {
			need = spec.Min
		}
		if len(steps) < need {
			return nil, &InputError{Field: "custom_steps", Message: fmt.Sprintf("mapping mode needs at least %d steps, got %d", need, len(steps))}
		}
	}

	return &Prepared{
		Mode: mode,
		Selection: core.Selection{
			Domain:       f.Domain,
			Process:      process.Name,
			Focus:        focus,
			Industry:     f.Industry,
			Maturity:     f.Maturity,
			Constraints:  f.Constraints,
			Context:      userContext,
			CustomSteps:  steps,
			Goal:         process.Goal,
			DefaultSteps: process.DefaultSteps,
			ToolLibrary:  catalog.ToolLibrary,
			Year:         catalog.Year,
		},
	}, nil
}

// Run validates f, generates the workflow and logs the submission.
func (s *Service) Run(ctx context.Context, f Form) (*core.Result, error) {
	return s.RunWithID(ctx, s.newID(), f)
}

// RunWithID is Run with a caller-chosen request id.
func (s *Service) RunWithID(ctx context.Context, requestID string, f Form) (*core.Result, error) {
	prepared, err := s.Prepare(f)
	if err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{
		"request_id": requestID,
		"domain":     prepared.Selection.Domain,
		"process":    prepared.Selection.Process,
		"mode":       prepared.Mode,
	})
	logger.Info("generation requested")

	s.record(requestID, prepared)

	return core.GenerateWorkflow(ctx, core.GenerateOptions{
		Generator:       s.opts.Generator,
		RepairGenerator: s.opts.RepairGenerator,
		Mode:            prepared.Mode,
		Selection:       prepared.Selection,
		MaxTokens:       s.opts.MaxTokens,
		RepairMaxTokens: s.opts.RepairMaxTokens,
		RequestID:       requestID,
	})
}

// record logs the request. Context is never logged.
func (s *Service) record(requestID string, p *Prepared) {
	if s.opts.Recorder == nil {
		return
	}
	s.opts.Recorder.Record(submissions.Submission{
		RequestID:   requestID,
		Mode:        string(p.Mode),
		Domain:      p.Selection.Domain,
		Process:     p.Selection.Process,
		Focus:       p.Selection.Focus,
		Industry:    p.Selection.Industry,
		Maturity:    p.Selection.Maturity,
		Constraints: p.Selection.Constraints,
		CustomSteps: p.Selection.CustomSteps,
	})
}
