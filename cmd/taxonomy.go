package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dhabedank/workflow-lens/internal/taxonomy"
	"github.com/dhabedank/workflow-lens/internal/tui"
)

var (
	taxonomyFormat string
	taxonomyFile   string
)

// TaxonomyCmd represents the taxonomy command.
var TaxonomyCmd = &cobra.Command{
	Use:   "taxonomy [domain]",
	Short: "List domains, processes and focus areas",
	Long: `Print the process catalog used for generation.

With a domain argument only that domain is shown. --file validates and
prints a custom catalog instead of the configured one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTaxonomy,
}

func init() {
	TaxonomyCmd.Flags().StringVarP(&taxonomyFormat, "output", "o", "text", "Output format (text/yaml/json)")
	TaxonomyCmd.Flags().StringVar(&taxonomyFile, "file", "", "Catalog file to validate and print")
}

func runTaxonomy(cmd *cobra.Command, args []string) error {
	path := taxonomyFile
	if path == "" {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		path = cfg.Taxonomy.Path
	}

	catalog, err := taxonomy.Load(path)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		d, ok := catalog.Domain(args[0])
		if !ok {
			return fmt.Errorf("unknown domain %q (%s)", args[0], strings.Join(catalog.DomainNames(), ", "))
		}
		filtered := *catalog
		filtered.Domains = []taxonomy.Domain{d}
		catalog = &filtered
	}

	out := cmd.OutOrStdout()
	switch taxonomyFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(catalog)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(catalog)
	case "text":
	default:
		return fmt.Errorf("unknown output format: %s", taxonomyFormat)
	}

	fmt.Fprintln(out, tui.TitleStyle.Render(catalog.Heading()))
	for _, d := range catalog.Domains {
		fmt.Fprintln(out)
		fmt.Fprintln(out, tui.SubtitleStyle.Render(d.Name))
		for _, p := range d.Processes {
			fmt.Fprintf(out, "  %s\n", tui.StageStyle.Render(p.Name))
			fmt.Fprintf(out, "    %s\n", tui.HelpStyle.Render(p.Goal))
			fmt.Fprintf(out, "    focus: %s\n", strings.Join(p.FocusAreas(), ", "))
		}
	}
	if len(args) == 0 {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Tools: %d categories  Industries: %d  Maturity levels: %d  Constraints: %d\n",
			len(catalog.ToolLibrary), len(catalog.Industries), len(catalog.Maturity), len(catalog.Constraints))
	}
	return nil
}
