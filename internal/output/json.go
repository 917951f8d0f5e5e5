package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dhabedank/workflow-lens/internal/core"
)

// JSONAdapter outputs the result as indented JSON.
type JSONAdapter struct{}

// NewJSONAdapter creates a JSON adapter.
func NewJSONAdapter() *JSONAdapter {
	return &JSONAdapter{}
}

func (a *JSONAdapter) Name() string {
	return "json"
}

// jsonResult is the wire shape of a rendered result.
type jsonResult struct {
	*core.Result
	Stats  Stats  `json:"stats"`
	RawOut string `json:"raw,omitempty"`
}

func (a *JSONAdapter) Render(w io.Writer, result *core.Result, config Config) error {
	if result == nil || result.Document == nil {
		return fmt.Errorf("nothing to render")
	}
	out := jsonResult{Result: result, Stats: Summarize(result.Document)}
	if config.IncludeRaw {
		out.RawOut = newView(result, config).Raw
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
