package core

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// Output allowances. The repair allowance never exceeds the primary one.
const (
	DefaultMaxTokens       = 2000
	DefaultRepairMaxTokens = 1400
	DefaultYear            = 2026
)

// GenerateOptions configures one generation.
type GenerateOptions struct {
	// Generator produces the primary response.
	Generator Generator

	// RepairGenerator handles the repair request. Defaults to Generator.
	RepairGenerator Generator

	Mode      Mode
	Selection Selection

	// MaxTokens and RepairMaxTokens default to DefaultMaxTokens and
	// DefaultRepairMaxTokens. RepairMaxTokens is clamped to MaxTokens.
	MaxTokens       int
	RepairMaxTokens int

	// RequestID identifies the user action this generation belongs to.
	RequestID string
}

// Result is a validated, normalized document plus the raw text behind it.
type Result struct {
	RequestID string            `json:"request_id"`
	Mode      Mode              `json:"mode"`
	Document  *WorkflowDocument `json:"document"`
	Warnings  []string          `json:"warnings,omitempty"`
	Repaired  bool              `json:"repaired"`
	Raw       string            `json:"-"`
	RepairRaw string            `json:"-"`
	Stages    []StageTiming     `json:"-"`
}

// StageTiming records one call to the generation collaborator.
type StageTiming struct {
	Name        string
	Generator   string
	InputChars  int
	OutputChars int
	Duration    time.Duration
}

// GenerateWorkflow runs one user-triggered generation: prompt, generate,
// parse, at most one repair, schema check, decode and normalize.
func GenerateWorkflow(ctx context.Context, opts GenerateOptions) (*Result, error) {
	if opts.Generator == nil {
		return nil, &ValidationError{Field: "generator", Message: "required"}
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeLens
	}
	contract := ContractFor(mode)
	maxTokens, repairMaxTokens := tokenBudgets(opts.MaxTokens, opts.RepairMaxTokens)

	sel := opts.Selection
	if sel.Year == 0 {
		sel.Year = DefaultYear
	}
	userPrompt := BuildUserPrompt(sel, contract)

	logger := log.WithFields(log.Fields{
		"request_id": opts.RequestID,
		"mode":       mode,
		"generator":  opts.Generator.Name(),
	})
	result := &Result{RequestID: opts.RequestID, Mode: mode}

	start := time.Now()
	raw, err := opts.Generator.Generate(ctx, GenerationRequest{
		System:    SystemPrompt,
		User:      userPrompt,
		MaxTokens: maxTokens,
		Contract:  &contract,
	})
	result.Stages = append(result.Stages, StageTiming{
		Name:        "generate",
		Generator:   opts.Generator.Name(),
		InputChars:  len(SystemPrompt) + len(userPrompt),
		OutputChars: len(raw),
		Duration:    time.Since(start),
	})
	if err != nil {
		logger.WithError(err).Warn("generation failed")
		return nil, asGenerationFailure(opts.Generator.Name(), err)
	}
	result.Raw = raw

	obj, err := ParseObject(raw)
	if err != nil {
		logger.WithError(err).Info("primary output unusable, requesting repair")

		repairGen := opts.RepairGenerator
		if repairGen == nil {
			repairGen = opts.Generator
		}
		repairer := &Repairer{Generator: repairGen, Contract: contract, MaxTokens: repairMaxTokens}

		start = time.Now()
		repaired, rerr := repairer.Repair(ctx, raw)
		result.Stages = append(result.Stages, StageTiming{
			Name:        "repair",
			Generator:   repairGen.Name(),
			InputChars:  len(RepairSystemPrompt) + len(BuildRepairPrompt(raw, contract)),
			OutputChars: len(repaired),
			Duration:    time.Since(start),
		})
		if rerr != nil {
			logger.WithError(rerr).Warn("repair request failed")
			return nil, &RepairFailure{Original: raw, Err: asGenerationFailure(repairGen.Name(), rerr)}
		}

		obj, err = ParseObject(repaired)
		if err != nil {
			logger.WithError(err).Warn("repair output unusable")
			return nil, &RepairFailure{Original: raw, Repair: repaired, Err: err}
		}
		result.Repaired = true
		result.RepairRaw = repaired
	}

	used := result.Raw
	if result.Repaired {
		used = result.RepairRaw
	}

	doc, err := buildDocument(obj, used, contract)
	if err != nil {
		var sv *SchemaViolation
		if result.Repaired && errors.As(err, &sv) {
			sv.Original = result.Raw
		}
		logger.WithError(err).Warn("document rejected")
		return nil, err
	}

	if doc.Domain == "" {
		doc.Domain = sel.Domain
	}
	if doc.Process == "" {
		doc.Process = sel.Process
	}
	if doc.SubProcess == "" {
		doc.SubProcess = sel.Focus
	}

	result.Document = doc
	result.Warnings = doc.Warnings()
	logger.WithFields(log.Fields{
		"today_steps":  len(doc.TodaySteps),
		"future_steps": len(doc.FutureSteps),
		"repaired":     result.Repaired,
	}).Info("workflow generated")
	return result, nil
}

// ProcessRaw runs parse, schema check, decode and normalize on text that was
// saved earlier. No repair is attempted.
func ProcessRaw(raw string, mode Mode) (*WorkflowDocument, error) {
	contract := ContractFor(mode)
	obj, err := ParseObject(raw)
	if err != nil {
		return nil, err
	}
	return buildDocument(obj, raw, contract)
}

// buildDocument checks obj against the contract, decodes and normalizes it.
// Violations carry raw so the caller can show what the model sent.
func buildDocument(obj Object, raw string, contract Contract) (*WorkflowDocument, error) {
	doc, err := decodeChecked(obj, contract)
	if err != nil {
		var sv *SchemaViolation
		if errors.As(err, &sv) {
			sv.Raw = raw
		}
		return nil, err
	}
	return doc, nil
}

func decodeChecked(obj Object, contract Contract) (*WorkflowDocument, error) {
	if err := contract.Check(obj); err != nil {
		return nil, err
	}
	doc, err := DecodeDocument(contract.dropMistyped(obj))
	if err != nil {
		return nil, err
	}
	Normalize(doc, contract)
	if err := doc.Validate(contract); err != nil {
		return nil, err
	}
	return doc, nil
}

func tokenBudgets(primary, repair int) (int, int) {
	if primary <= 0 {
		primary = DefaultMaxTokens
	}
	if repair <= 0 {
		repair = DefaultRepairMaxTokens
	}
	if repair > primary {
		repair = primary
	}
	return primary, repair
}

// asGenerationFailure keeps typed provider failures and classifies the rest.
func asGenerationFailure(provider string, err error) error {
	var gf *GenerationFailure
	if errors.As(err, &gf) {
		return gf
	}
	kind := FailureService
	if errors.Is(err, context.DeadlineExceeded) {
		kind = FailureTimeout
	}
	return &GenerationFailure{Kind: kind, Provider: provider, Err: err}
}
