package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/dhabedank/workflow-lens/internal/core"
)

// TerminalAdapter renders the Markdown view with glamour.
type TerminalAdapter struct{}

// NewTerminalAdapter creates a terminal adapter.
func NewTerminalAdapter() *TerminalAdapter {
	return &TerminalAdapter{}
}

func (a *TerminalAdapter) Name() string {
	return "terminal"
}

func (a *TerminalAdapter) Render(w io.Writer, result *core.Result, config Config) error {
	if result == nil || result.Document == nil {
		return fmt.Errorf("nothing to render")
	}
	out, err := RenderTerminal(markdown(newView(result, config)), config.WordWrap)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// RenderTerminal styles Markdown for the terminal.
func RenderTerminal(md string, wrap int) (string, error) {
	if wrap <= 0 {
		wrap = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create terminal renderer: %w", err)
	}
	return renderer.Render(md)
}
