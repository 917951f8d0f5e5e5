package llm

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dhabedank/workflow-lens/internal/core"
)

// RetryPolicy bounds retries of one generation request.
type RetryPolicy struct {
	Attempts   int           `yaml:"attempts"`
	BaseDelay  time.Duration `yaml:"base_delay"`
	Multiplier float64       `yaml:"multiplier"`
}

// DefaultRetryPolicy tries three times, waiting 1.5s then 3s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, BaseDelay: 1500 * time.Millisecond, Multiplier: 2}
}

// Delay returns the wait after the given zero-based attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := float64(p.BaseDelay)
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	for i := 0; i < attempt; i++ {
		d *= mult
	}
	return time.Duration(d)
}

type retryingAdapter struct {
	Adapter
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps a so that retryable generation failures are retried with
// exponential backoff. Parse problems are never seen here: they are handled
// by the repair step, not by resending.
func WithRetry(a Adapter, policy RetryPolicy) Adapter {
	if policy.Attempts <= 1 {
		return a
	}
	return &retryingAdapter{Adapter: a, policy: policy, sleep: sleepContext}
}

func (r *retryingAdapter) Generate(ctx context.Context, req core.GenerationRequest) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.policy.Attempts; attempt++ {
		out, err := r.Adapter.Generate(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err

		var gf *core.GenerationFailure
		if !errors.As(err, &gf) || !gf.Retryable() || attempt == r.policy.Attempts-1 {
			break
		}

		delay := r.policy.Delay(attempt)
		log.WithFields(log.Fields{
			"adapter": r.Name(),
			"attempt": attempt + 1,
			"delay":   delay,
		}).WithError(err).Warn("generation failed, retrying")

		if err := r.sleep(ctx, delay); err != nil {
			break
		}
	}
	return "", lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
