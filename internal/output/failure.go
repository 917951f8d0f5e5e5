package output

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dhabedank/workflow-lens/internal/core"
)

// Failure is the user-facing description of a pipeline error.
type Failure struct {
	Title    string
	Message  string
	Problems []string
	Hint     string
	Payloads []core.Payload
}

// DescribeFailure classifies err for display. Raw model output carried by
// the error is always included.
func DescribeFailure(err error) Failure {
	f := Failure{
		Title:    "Generation failed",
		Message:  err.Error(),
		Hint:     "Try again. If it keeps failing, simplify the custom steps or context.",
		Payloads: core.RawPayloads(err),
	}

	var (
		gf *core.GenerationFailure
		rf *core.RepairFailure
		sv *core.SchemaViolation
		pe *core.ParseError
		ie interface{ InputProblem() string }
	)
	switch {
	case errors.As(err, &ie):
		f.Title = "Check your selection"
		f.Message = ie.InputProblem()
		f.Hint = "Fix the highlighted input and submit again."
	case errors.As(err, &rf):
		f.Title = "Unreadable model output"
		f.Message = "The model's answer could not be read, even after one repair attempt."
		if errors.As(err, &gf) {
			f.Message = "The model's answer could not be read and the repair request failed: " + gf.UserMessage()
		}
	case errors.As(err, &gf):
		f.Title = "Model provider unavailable"
		f.Message = gf.UserMessage()
		if gf.Kind == core.FailureMissingCredentials {
			f.Hint = "Run 'workflow-lens setup' or set the provider's API key."
		}
	case errors.As(err, &sv):
		f.Title = "Incomplete answer"
		f.Message = "The model's answer is missing required content."
		f.Problems = sv.Problems
	case errors.As(err, &pe):
		f.Title = "Unreadable model output"
		f.Message = fmt.Sprintf("The saved output could not be read (%s).", pe.Reason)
	}
	return f
}

// RenderFailure writes a diagnostic for err in the given format.
func RenderFailure(w io.Writer, err error, format string, config Config) error {
	f := DescribeFailure(err)
	switch strings.ToLower(format) {
	case "html":
		if config.Standalone {
			heading := config.Heading
			if heading == "" {
				heading = DefaultConfig().Heading
			}
			return htmlTemplates.ExecuteTemplate(w, "document", struct {
				Heading string
				View    view
				Failure *Failure
			}{Heading: heading, Failure: &f})
		}
		return htmlTemplates.ExecuteTemplate(w, "failure", f)
	default:
		_, werr := io.WriteString(w, failureMarkdown(f))
		return werr
	}
}

// FailureFragment renders the HTML diagnostic for err for embedding in a page.
func FailureFragment(err error) (template.HTML, error) {
	var sb strings.Builder
	if rerr := RenderFailure(&sb, err, "html", Config{}); rerr != nil {
		return "", rerr
	}
	return template.HTML(sb.String()), nil
}

func failureMarkdown(f Failure) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n%s\n\n", f.Title, f.Message)
	for _, p := range f.Problems {
		fmt.Fprintf(&sb, "- %s\n", p)
	}
	if len(f.Problems) > 0 {
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "_%s_\n", f.Hint)
	for _, p := range f.Payloads {
		fmt.Fprintf(&sb, "\n### %s\n\n```\n%s\n```\n", p.Label, p.Text)
	}
	return sb.String()
}
