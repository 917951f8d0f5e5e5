package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhabedank/workflow-lens/internal/core"
)

// Adapter is the interface all output adapters must implement.
type Adapter interface {
	// Name returns the adapter identifier for logging.
	Name() string

	// Render writes result to w.
	Render(w io.Writer, result *core.Result, config Config) error
}

// Config configures output adapter behavior.
type Config struct {
	// Heading is shown above the result, e.g. "2026 Workflow Shift Lens".
	Heading string

	// Year labels the target-state column.
	Year int

	// Standalone wraps HTML output in a complete document.
	Standalone bool

	// IncludeRaw appends the raw model output.
	IncludeRaw bool

	// WordWrap for terminal output. 0 means 80.
	WordWrap int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Heading:  fmt.Sprintf("%d Workflow Shift Lens", core.DefaultYear),
		Year:     core.DefaultYear,
		WordWrap: 80,
	}
}

// Formats lists the names NewAdapter accepts.
var Formats = []string{"terminal", "markdown", "html", "json"}

// NewAdapter returns the adapter for format.
func NewAdapter(format string) (Adapter, error) {
	switch strings.ToLower(format) {
	case "terminal", "":
		return NewTerminalAdapter(), nil
	case "markdown", "md":
		return NewMarkdownAdapter(), nil
	case "html":
		return NewHTMLAdapter(), nil
	case "json":
		return NewJSONAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (%s)", format, strings.Join(Formats, "/"))
	}
}
