// Package taxonomy holds the process catalog users pick from and the tool
// library the model may cite.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dhabedank/workflow-lens/internal/core"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// EndToEnd is the implicit focus area of every process.
const EndToEnd = "End-to-end"

// Catalog is the full taxonomy.
type Catalog struct {
	Title       string              `yaml:"title" json:"title"`
	Year        int                 `yaml:"year" json:"year"`
	Domains     []Domain            `yaml:"domains" json:"domains"`
	ToolLibrary []core.ToolCategory `yaml:"tool_library" json:"tool_library"`
	Industries  []string            `yaml:"industries" json:"industries"`
	Maturity    []string            `yaml:"maturity" json:"maturity"`
	Constraints []string            `yaml:"constraints" json:"constraints"`
}

// Domain groups related processes.
type Domain struct {
	Name      string    `yaml:"name" json:"name"`
	Processes []Process `yaml:"processes" json:"processes"`
}

// Process is one selectable business process.
type Process struct {
	Name         string   `yaml:"name" json:"name"`
	Goal         string   `yaml:"goal" json:"goal"`
	DefaultSteps []string `yaml:"default_steps" json:"default_steps"`
	Focus        []string `yaml:"focus,omitempty" json:"focus,omitempty"`
}

// FocusAreas returns the sub-process choices for p.
func (p Process) FocusAreas() []string {
	if len(p.Focus) > 0 {
		return p.Focus
	}
	return append([]string{EndToEnd}, p.DefaultSteps...)
}

// HasFocus reports whether focus is one of p's focus areas.
func (p Process) HasFocus(focus string) bool {
	return slices.Contains(p.FocusAreas(), focus)
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path yields the embedded catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if c.Year == 0 {
		c.Year = core.DefaultYear
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks names are present and unique and every process has steps.
func (c *Catalog) Validate() error {
	var problems []string
	if len(c.Domains) == 0 {
		problems = append(problems, "no domains")
	}

	seenDomains := make(map[string]bool)
	for i, d := range c.Domains {
		if strings.TrimSpace(d.Name) == "" {
			problems = append(problems, fmt.Sprintf("domain %d: empty name", i+1))
			continue
		}
		if seenDomains[d.Name] {
			problems = append(problems, fmt.Sprintf("domain %q: duplicate", d.Name))
		}
		seenDomains[d.Name] = true

		if len(d.Processes) == 0 {
			problems = append(problems, fmt.Sprintf("domain %q: no processes", d.Name))
		}
		seenProcs := make(map[string]bool)
		for j, p := range d.Processes {
			if strings.TrimSpace(p.Name) == "" {
				problems = append(problems, fmt.Sprintf("domain %q process %d: empty name", d.Name, j+1))
				continue
			}
			if seenProcs[p.Name] {
				problems = append(problems, fmt.Sprintf("process %q in %q: duplicate", p.Name, d.Name))
			}
			seenProcs[p.Name] = true
			if len(p.DefaultSteps) == 0 {
				problems = append(problems, fmt.Sprintf("process %q: no default steps", p.Name))
			}
		}
	}

	for i, t := range c.ToolLibrary {
		if strings.TrimSpace(t.Category) == "" {
			problems = append(problems, fmt.Sprintf("tool category %d: empty name", i+1))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid catalog: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Domain returns the named domain.
func (c *Catalog) Domain(name string) (Domain, bool) {
	for _, d := range c.Domains {
		if d.Name == name {
			return d, true
		}
	}
	return Domain{}, false
}

// Lookup returns the process named process within domain.
func (c *Catalog) Lookup(domain, process string) (Process, bool) {
	d, ok := c.Domain(domain)
	if !ok {
		return Process{}, false
	}
	for _, p := range d.Processes {
		if p.Name == process {
			return p, true
		}
	}
	return Process{}, false
}

// HasFocus reports whether focus is a focus area of the given process.
func (c *Catalog) HasFocus(domain, process, focus string) bool {
	p, ok := c.Lookup(domain, process)
	return ok && p.HasFocus(focus)
}

// DomainNames lists domains in catalog order.
func (c *Catalog) DomainNames() []string {
	names := make([]string, 0, len(c.Domains))
	for _, d := range c.Domains {
		names = append(names, d.Name)
	}
	return names
}

// HasIndustry, HasMaturity and HasConstraint check optional selections.
func (c *Catalog) HasIndustry(s string) bool   { return slices.Contains(c.Industries, s) }
func (c *Catalog) HasMaturity(s string) bool   { return slices.Contains(c.Maturity, s) }
func (c *Catalog) HasConstraint(s string) bool { return slices.Contains(c.Constraints, s) }

// Heading is the page title, e.g. "2026 Workflow Shift Lens".
func (c *Catalog) Heading() string {
	title := c.Title
	if title == "" {
		title = "Workflow Shift Lens"
	}
	return fmt.Sprintf("%d %s", c.Year, title)
}
