package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dhabedank/workflow-lens/internal/core"
)

// ClaudeCLIAdapter uses the Claude Code CLI for generation.
// Preferred when PreferCLI is set because users already have it authenticated.
type ClaudeCLIAdapter struct {
	model string
	bin   string
}

// NewClaudeCLIAdapter creates a Claude CLI adapter.
func NewClaudeCLIAdapter(config Config) *ClaudeCLIAdapter {
	model := config.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &ClaudeCLIAdapter{model: model, bin: "claude"}
}

func (a *ClaudeCLIAdapter) Name() string {
	return ProviderClaudeCLI
}

// IsAvailable checks if the claude CLI is installed.
func (a *ClaudeCLIAdapter) IsAvailable() bool {
	_, err := exec.LookPath(a.bin)
	return err == nil
}

func (a *ClaudeCLIAdapter) Generate(ctx context.Context, req core.GenerationRequest) (string, error) {
	// The system prompt goes through a file, the user prompt through stdin.
	systemFile, err := os.CreateTemp("", "workflow-lens-system-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create system prompt file: %w", err)
	}
	defer os.Remove(systemFile.Name())

	if _, err := systemFile.WriteString(req.System); err != nil {
		systemFile.Close()
		return "", fmt.Errorf("failed to write system prompt: %w", err)
	}
	systemFile.Close()

	cmd := exec.CommandContext(ctx, a.bin,
		"--model", a.model,
		"--system-prompt-file", systemFile.Name(),
		"--print",
		"--output-format", "text",
	)
	cmd.Stdin = strings.NewReader(req.User)

	output, err := cmd.Output()
	if err != nil {
		return "", cliFailure(ctx, a.Name(), err)
	}
	return string(output), nil
}

// cliFailure turns a failed CLI run into a generation failure.
func cliFailure(ctx context.Context, provider string, err error) *core.GenerationFailure {
	if ctx.Err() != nil {
		return transportFailure(provider, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return &core.GenerationFailure{
			Kind:     core.FailureService,
			Provider: provider,
			Err:      fmt.Errorf("%s failed: %s", provider, stderr),
		}
	}
	return &core.GenerationFailure{Kind: core.FailureService, Provider: provider, Err: fmt.Errorf("%s failed: %w", provider, err)}
}
