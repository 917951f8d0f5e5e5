package core

import (
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies why the generation collaborator produced no output.
type FailureKind int

const (
	FailureService FailureKind = iota
	FailureRateLimited
	FailureTimeout
	FailureMissingCredentials
)

func (k FailureKind) String() string {
	switch k {
	case FailureRateLimited:
		return "rate limited"
	case FailureTimeout:
		return "timeout"
	case FailureMissingCredentials:
		return "missing credentials"
	default:
		return "service error"
	}
}

// GenerationFailure means the provider could not produce any text.
type GenerationFailure struct {
	Kind       FailureKind
	Provider   string
	StatusCode int // 0 when no HTTP status was involved
	Err        error
}

func (e *GenerationFailure) Error() string {
	msg := fmt.Sprintf("generation failed (%s)", e.Kind)
	if e.Provider != "" {
		msg += " via " + e.Provider
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationFailure) Unwrap() error { return e.Err }

// Retryable reports whether trying the same request again could succeed.
func (e *GenerationFailure) Retryable() bool {
	switch e.Kind {
	case FailureRateLimited, FailureTimeout:
		return true
	case FailureService:
		return e.StatusCode == 0 || e.StatusCode >= 500
	default:
		return false
	}
}

// UserMessage is the text shown to a person when generation fails.
func (e *GenerationFailure) UserMessage() string {
	switch e.Kind {
	case FailureRateLimited:
		return "The model provider is rate limiting requests. Wait a minute and try again."
	case FailureTimeout:
		return "The model provider did not answer in time. Try again."
	case FailureMissingCredentials:
		return "No API credentials are configured for the selected provider."
	default:
		return "The model provider returned an error. Try again in a moment."
	}
}

// Parse failure reasons.
const (
	ReasonNoObject  = "no structured object found"
	ReasonMalformed = "malformed output"
)

// ParseError means raw output could not be decoded into an object.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Reason, e.Err)
	}
	return "parse error: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// RepairFailure is terminal: the repair request failed or its output did
// not parse either. Both payloads are kept for diagnosis.
type RepairFailure struct {
	Original string
	Repair   string
	Err      error
}

func (e *RepairFailure) Error() string {
	return fmt.Sprintf("repair failed: %v", e.Err)
}

func (e *RepairFailure) Unwrap() error { return e.Err }

// SchemaViolation means the object parsed but does not satisfy the contract.
// Raw is the text the object came from. After a repair, Raw is the repair
// output and Original is the first answer.
type SchemaViolation struct {
	Problems []string
	Raw      string
	Original string
}

func (e *SchemaViolation) Error() string {
	return "schema violation: " + strings.Join(e.Problems, "; ")
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// Payload is raw model text attached to a failure.
type Payload struct {
	Label string
	Text  string
}

// RawPayloads returns every raw model output carried by err, in the order
// it was produced. Generation failures carry none. Once the repair model
// answered, its reply is included even when empty.
func RawPayloads(err error) []Payload {
	var rf *RepairFailure
	if errors.As(err, &rf) {
		payloads := []Payload{{Label: "original output", Text: rf.Original}}
		var gf *GenerationFailure
		if rf.Repair != "" || !errors.As(rf.Err, &gf) {
			payloads = append(payloads, Payload{Label: "repair output", Text: rf.Repair})
		}
		return payloads
	}
	var sv *SchemaViolation
	if errors.As(err, &sv) {
		if sv.Original != "" {
			return []Payload{
				{Label: "original output", Text: sv.Original},
				{Label: "repair output", Text: sv.Raw},
			}
		}
		return []Payload{{Label: "model output", Text: sv.Raw}}
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return []Payload{{Label: "model output", Text: pe.Raw}}
	}
	return nil
}
