package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/dhabedank/workflow-lens/internal/service"
)

//go:embed templates/*.html.tmpl
var pageFS embed.FS

type renderer struct {
	templates *template.Template
}

func newRenderer() (*renderer, error) {
	t, err := template.New("pages").Funcs(template.FuncMap{
		"maxContext": func() int { return service.MaxContextChars },
		"maxSteps":   func() int { return service.MaxCustomSteps },
	}).ParseFS(pageFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return &renderer{templates: t}, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
