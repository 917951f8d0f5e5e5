package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/dhabedank/workflow-lens/internal/core"
)

// statusFailure classifies an HTTP status returned by a provider.
func statusFailure(provider string, status int, err error) *core.GenerationFailure {
	kind := core.FailureService
	switch {
	case status == http.StatusTooManyRequests:
		kind = core.FailureRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		kind = core.FailureTimeout
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = core.FailureMissingCredentials
	}
	return &core.GenerationFailure{Kind: kind, Provider: provider, StatusCode: status, Err: err}
}

// transportFailure classifies an error that carried no HTTP status.
func transportFailure(provider string, err error) *core.GenerationFailure {
	kind := core.FailureService
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = core.FailureTimeout
	}
	return &core.GenerationFailure{Kind: kind, Provider: provider, Err: err}
}

func missingCredentials(provider, envVar string) *core.GenerationFailure {
	return &core.GenerationFailure{
		Kind:     core.FailureMissingCredentials,
		Provider: provider,
		Err:      fmt.Errorf("%s not set", envVar),
	}
}
