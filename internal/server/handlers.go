package server

import (
	"errors"
	"html/template"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/dhabedank/workflow-lens/internal/core"
	"github.com/dhabedank/workflow-lens/internal/output"
	"github.com/dhabedank/workflow-lens/internal/service"
	"github.com/dhabedank/workflow-lens/internal/taxonomy"
)

// page is the data every HTML template receives.
type page struct {
	Heading    string
	Stylesheet template.CSS
	Catalog    *taxonomy.Catalog
	Form       service.Form
	Goal       string
	FocusAreas []string
	Problem    string
	Result     template.HTML
	Failure    template.HTML
	RequestID  string
}

// Checked reports whether constraint c was ticked.
func (p page) Checked(c string) bool {
	return slices.Contains(p.Form.Constraints, c)
}

func (s *Server) newPage(c echo.Context) page {
	catalog := s.svc.Catalog()
	return page{
		Heading:    catalog.Heading(),
		Stylesheet: output.Stylesheet,
		Catalog:    catalog,
		RequestID:  requestID(c),
	}
}

// withProcess fills the process-dependent parts of p. Unknown names fall
// back to the first process in the catalog.
func (p *page) withProcess(domain, process string) {
	d, proc, ok := findProcess(p.Catalog, domain, process)
	if !ok && len(p.Catalog.Domains) > 0 && len(p.Catalog.Domains[0].Processes) > 0 {
		d, proc = p.Catalog.Domains[0], p.Catalog.Domains[0].Processes[0]
	}
	p.Form.Domain = d.Name
	p.Form.Process = proc.Name
	p.Goal = proc.Goal
	p.FocusAreas = proc.FocusAreas()
	if p.Form.Focus == "" {
		p.Form.Focus = taxonomy.EndToEnd
	}
}

// findProcess looks a process up by name. domain narrows the search when set.
func findProcess(c *taxonomy.Catalog, domain, process string) (taxonomy.Domain, taxonomy.Process, bool) {
	for _, d := range c.Domains {
		if domain != "" && d.Name != domain {
			continue
		}
		for _, p := range d.Processes {
			if p.Name == process {
				return d, p, true
			}
		}
	}
	return taxonomy.Domain{}, taxonomy.Process{}, false
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}

func (s *Server) handleIndex(c echo.Context) error {
	p := s.newPage(c)
	p.withProcess(c.QueryParam("domain"), c.QueryParam("process"))
	return c.Render(http.StatusOK, "index", p)
}

func (s *Server) handleGenerate(c echo.Context) error {
	p := s.newPage(c)

	var form service.Form
	if err := c.Bind(&form); err != nil {
		p.withProcess("", "")
		p.Problem = "The form could not be read."
		return c.Render(http.StatusBadRequest, "index", p)
	}
	p.Form = form

	ctx := c.Request().Context()
	result, err := s.svc.RunWithID(ctx, p.RequestID, form)
	s.metrics.record(ctx, result, err)

	if err != nil {
		var ie *service.InputError
		if errors.As(err, &ie) {
			p.withProcess(form.Domain, form.Process)
			p.Problem = ie.InputProblem()
			return c.Render(http.StatusBadRequest, "index", p)
		}

		logFailure(p.RequestID, err)
		fragment, rerr := output.FailureFragment(err)
		if rerr != nil {
			return rerr
		}
		p.Failure = fragment
		return c.Render(statusFor(err), "error", p)
	}

	fragment, err := output.Fragment(result, output.Config{
		Heading: p.Heading,
		Year:    p.Catalog.Year,
	})
	if err != nil {
		return err
	}
	p.Result = fragment
	return c.Render(http.StatusOK, "result", p)
}

func (s *Server) handleTaxonomy(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Catalog())
}

func (s *Server) handleAPIGenerate(c echo.Context) error {
	id := requestID(c)

	var form service.Form
	if err := c.Bind(&form); err != nil {
		return writeProblem(c, id, &service.InputError{Field: "body", Message: "expected a JSON form"})
	}

	ctx := c.Request().Context()
	result, err := s.svc.RunWithID(ctx, id, form)
	s.metrics.record(ctx, result, err)
	if err != nil {
		logFailure(id, err)
		return writeProblem(c, id, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return output.NewJSONAdapter().Render(c.Response(), result, output.DefaultConfig())
}

func (s *Server) handleHealth(c echo.Context) error {
	body := map[string]any{"status": "ok"}
	if s.health != nil {
		for k, v := range s.health() {
			body[k] = v
		}
	}
	return c.JSON(http.StatusOK, body)
}

// problem is an RFC 7807 body extended with the raw model output.
type problem struct {
	Type      string   `json:"type"`
	Title     string   `json:"title"`
	Status    int      `json:"status"`
	Detail    string   `json:"detail"`
	Hint      string   `json:"hint,omitempty"`
	Problems  []string `json:"problems,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
	Raw       string   `json:"raw,omitempty"`
	RepairRaw string   `json:"repair_raw,omitempty"`
}

func writeProblem(c echo.Context, requestID string, err error) error {
	status := statusFor(err)
	f := output.DescribeFailure(err)
	body := problem{
		Type:      "about:blank",
		Title:     f.Title,
		Status:    status,
		Detail:    f.Message,
		Hint:      f.Hint,
		Problems:  f.Problems,
		RequestID: requestID,
	}

	var (
		rf *core.RepairFailure
		sv *core.SchemaViolation
		pe *core.ParseError
	)
	switch {
	case errors.As(err, &rf):
		body.Raw, body.RepairRaw = rf.Original, rf.Repair
	case errors.As(err, &sv) && sv.Original != "":
		body.Raw, body.RepairRaw = sv.Original, sv.Raw
	case errors.As(err, &sv):
		body.Raw = sv.Raw
	case errors.As(err, &pe):
		body.Raw = pe.Raw
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
	return c.JSON(status, body)
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	switch outcomeOf(err) {
	case outcomeInvalidInput:
		return http.StatusBadRequest
	case outcomeProviderFailed:
		return http.StatusBadGateway
	case outcomeRepairFailed, outcomeSchemaFailed, outcomeParseFailed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func logFailure(requestID string, err error) {
	entry := log.WithFields(log.Fields{
		"request_id": requestID,
		"outcome":    outcomeOf(err),
	}).WithError(err)

	var gf *core.GenerationFailure
	if errors.As(err, &gf) && gf.Retryable() {
		entry.Warn("generation failed")
		return
	}
	entry.Error("generation failed")
}
