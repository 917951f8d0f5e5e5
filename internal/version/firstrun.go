// Package version tracks per-user install state.
package version

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dhabedank/workflow-lens/internal/config"
	"github.com/dhabedank/workflow-lens/internal/tui"
)

// StateDir is the per-user directory for markers.
const StateDir = ".workflow-lens"

// IsFirstRun returns true if this appears to be the first run.
// Checks for existence of config file or first-run marker.
func IsFirstRun() bool {
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}

	if _, err := os.Stat(config.DefaultPath()); err == nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(home, StateDir, ".initialized")); err == nil {
		return false
	}
	return true
}

// MarkInitialized creates the first-run marker.
func MarkInitialized() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	dir := filepath.Join(home, StateDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(dir, ".initialized"), []byte{}, 0o644)
}

// PrintFirstRunNotice writes a welcome message for first-time users and
// marks the install as initialized.
func PrintFirstRunNotice(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s Welcome to workflow-lens!\n", tui.TitleStyle.Render("*"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Quick start:")
	fmt.Fprintf(w, "    1. Set an API key (OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY) or install Claude Code\n")
	fmt.Fprintf(w, "    2. Run %s to pick your models\n", tui.ModelStyle.Render("workflow-lens setup"))
	fmt.Fprintf(w, "    3. Try %s, or %s for the web form\n", tui.ModelStyle.Render("workflow-lens pick"), tui.ModelStyle.Render("workflow-lens serve"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", tui.HelpStyle.Render("Run 'workflow-lens --help' for all options"))
	fmt.Fprintln(w)

	MarkInitialized()
}
