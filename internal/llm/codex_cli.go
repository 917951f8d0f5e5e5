package llm

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dhabedank/workflow-lens/internal/core"
)

// CodexCLIAdapter uses the Codex CLI for generation.
type CodexCLIAdapter struct {
	model string
	bin   string
}

// NewCodexCLIAdapter creates a Codex CLI adapter.
func NewCodexCLIAdapter(config Config) *CodexCLIAdapter {
	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &CodexCLIAdapter{model: model, bin: "codex"}
}

func (a *CodexCLIAdapter) Name() string {
	return ProviderCodexCLI
}

// IsAvailable checks if the codex CLI is installed.
func (a *CodexCLIAdapter) IsAvailable() bool {
	_, err := exec.LookPath(a.bin)
	return err == nil
}

func (a *CodexCLIAdapter) Generate(ctx context.Context, req core.GenerationRequest) (string, error) {
	// Codex takes a single prompt.
	combined := fmt.Sprintf("SYSTEM INSTRUCTIONS:\n%s\n\nUSER REQUEST:\n%s", req.System, req.User)

	cmd := exec.CommandContext(ctx, a.bin,
		"--model", a.model,
		"--quiet",
	)
	cmd.Stdin = strings.NewReader(combined)

	output, err := cmd.Output()
	if err != nil {
		return "", cliFailure(ctx, a.Name(), err)
	}
	return string(output), nil
}
