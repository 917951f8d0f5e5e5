package output

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/dhabedank/workflow-lens/internal/core"
)

//go:embed templates/result.html.tmpl templates/styles.css
var templateFS embed.FS

// Stylesheet is the card CSS shared by the result fragment and the web pages.
var Stylesheet = template.CSS(mustRead("templates/styles.css"))

var htmlTemplates = template.Must(template.New("output").Funcs(template.FuncMap{
	"actorMembers": actorMembers,
	"lower":        strings.ToLower,
	"join":         strings.Join,
	"isUnknown":    func(s string) bool { return strings.HasPrefix(s, UnknownStep) },
	"css":          func() template.CSS { return Stylesheet },
}).ParseFS(templateFS, "templates/result.html.tmpl"))

func mustRead(name string) string {
	data, err := templateFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(data)
}

func actorMembers(a core.Actor) []string {
	members := a.Members()
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.String())
	}
	return names
}

// HTMLAdapter renders result cards with html/template.
type HTMLAdapter struct{}

// NewHTMLAdapter creates an HTML adapter.
func NewHTMLAdapter() *HTMLAdapter {
	return &HTMLAdapter{}
}

func (a *HTMLAdapter) Name() string {
	return "html"
}

func (a *HTMLAdapter) Render(w io.Writer, result *core.Result, config Config) error {
	if result == nil || result.Document == nil {
		return fmt.Errorf("nothing to render")
	}
	v := newView(result, config)
	if config.Standalone {
		return htmlTemplates.ExecuteTemplate(w, "document", struct {
			Heading string
			View    view
			Failure *Failure
		}{Heading: v.Heading, View: v})
	}
	return htmlTemplates.ExecuteTemplate(w, "result", v)
}

// Fragment renders result as an HTML fragment for embedding in a page.
func Fragment(result *core.Result, config Config) (template.HTML, error) {
	var sb strings.Builder
	config.Standalone = false
	if err := NewHTMLAdapter().Render(&sb, result, config); err != nil {
		return "", err
	}
	return template.HTML(sb.String()), nil
}
