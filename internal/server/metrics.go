package server

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/dhabedank/workflow-lens/internal/core"
	"github.com/dhabedank/workflow-lens/internal/service"
)

// Generation outcomes recorded on workflow_lens.generations.
const (
	outcomeOK             = "ok"
	outcomeInvalidInput   = "invalid_input"
	outcomeProviderFailed = "provider_failure"
	outcomeRepairFailed   = "repair_failure"
	outcomeSchemaFailed   = "schema_violation"
	outcomeParseFailed    = "parse_failure"
	outcomeError          = "error"
)

type metrics struct {
	generations metric.Int64Counter
	repairs     metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	generations, err := meter.Int64Counter("workflow_lens.generations",
		metric.WithDescription("Generation requests by outcome."))
	if err != nil {
		return nil, fmt.Errorf("failed to create generations counter: %w", err)
	}
	repairs, err := meter.Int64Counter("workflow_lens.repairs",
		metric.WithDescription("Repair requests sent after unreadable output."))
	if err != nil {
		return nil, fmt.Errorf("failed to create repairs counter: %w", err)
	}
	return &metrics{generations: generations, repairs: repairs}, nil
}

func (m *metrics) record(ctx context.Context, result *core.Result, err error) {
	m.generations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcomeOf(err))))

	var rf *core.RepairFailure
	if (result != nil && result.Repaired) || errors.As(err, &rf) {
		m.repairs.Add(ctx, 1)
	}
}

// outcomeOf classifies err. RepairFailure is checked before
// GenerationFailure because a failed repair request wraps one.
func outcomeOf(err error) string {
	var (
		ie *service.InputError
		rf *core.RepairFailure
		gf *core.GenerationFailure
		sv *core.SchemaViolation
		pe *core.ParseError
	)
	switch {
	case err == nil:
		return outcomeOK
	case errors.As(err, &ie):
		return outcomeInvalidInput
	case errors.As(err, &rf):
		return outcomeRepairFailed
	case errors.As(err, &gf):
		return outcomeProviderFailed
	case errors.As(err, &sv):
		return outcomeSchemaFailed
	case errors.As(err, &pe):
		return outcomeParseFailed
	default:
		return outcomeError
	}
}
