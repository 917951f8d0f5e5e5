package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dhabedank/workflow-lens/internal/core"
	"github.com/dhabedank/workflow-lens/internal/output"
	"github.com/dhabedank/workflow-lens/internal/service"
	"github.com/dhabedank/workflow-lens/internal/tui"
)

var (
	genForm       service.Form
	genStepsFile  string
	genLLM        llmFlags
	genFormat     string
	genOutputPath string
	genStandalone bool
	genIncludeRaw bool
	genWordWrap   int
	genFromJSON   string // Skip the LLM and process saved output
	genSaveJSON   string // Save raw model output
)

// GenerateCmd represents the generate command.
var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a workflow lens for one process",
	Long: `Generate today's workflow and its AI-augmented target state for one
business process.

Pick the process with --domain and --process. Supplying your own steps with
--steps-file switches to mapping mode, which maps the target state onto
exactly those steps.

The raw model output can be saved with --save-json and processed again
later with --from-json, without calling the model.`,
	Example: `  workflow-lens generate --domain Finance --process "Record-to-Report (R2R)" --focus Reconciliations
  workflow-lens generate --domain Finance --process "Record-to-Report (R2R)" --steps-file steps.txt -o html --standalone --out lens.html
  workflow-lens generate --from-json raw.json --domain Finance --process "Record-to-Report (R2R)" -o json`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	// Selection
	GenerateCmd.Flags().StringVarP(&genForm.Domain, "domain", "d", "", "Business domain (see 'workflow-lens taxonomy')")
	GenerateCmd.Flags().StringVarP(&genForm.Process, "process", "p", "", "Process within the domain")
	GenerateCmd.Flags().StringVarP(&genForm.Focus, "focus", "f", "", "Sub-process focus area (default: End-to-end)")
	GenerateCmd.Flags().StringVar(&genForm.Industry, "industry", "", "Industry")
	GenerateCmd.Flags().StringVar(&genForm.Maturity, "maturity", "", "Automation maturity level")
	GenerateCmd.Flags().StringSliceVar(&genForm.Constraints, "constraint", nil, "Constraint (repeatable)")
	GenerateCmd.Flags().StringVar(&genForm.Context, "context", "", "Free-text context (not logged)")
	GenerateCmd.Flags().StringVar(&genStepsFile, "steps-file", "", "File with your current steps, one per line")
	GenerateCmd.Flags().StringVar(&genForm.Mode, "mode", "", "Generation mode (lens/mapping, default: mapping when steps are given)")

	// LLM options
	genLLM.register(GenerateCmd)

	// Output options
	GenerateCmd.Flags().StringVarP(&genFormat, "output", "o", "terminal", "Output format (terminal/markdown/html/json)")
	GenerateCmd.Flags().StringVar(&genOutputPath, "out", "", "Write output to a file instead of stdout")
	GenerateCmd.Flags().BoolVar(&genStandalone, "standalone", false, "Wrap HTML output in a full page")
	GenerateCmd.Flags().BoolVar(&genIncludeRaw, "include-raw", false, "Include the raw model output")
	GenerateCmd.Flags().IntVar(&genWordWrap, "wrap", 100, "Word wrap width for terminal output")

	// Checkpoint/resume options
	GenerateCmd.Flags().StringVar(&genFromJSON, "from-json", "", "Process saved raw model output (skip LLM)")
	GenerateCmd.Flags().StringVar(&genSaveJSON, "save-json", "", "Save raw model output to file (for --from-json)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &genLLM)
	if err != nil {
		return err
	}

	form := genForm
	if genStepsFile != "" {
		data, err := os.ReadFile(genStepsFile)
		if err != nil {
			return fmt.Errorf("failed to read steps file: %w", err)
		}
		form.CustomSteps = string(data)
	}

	adapter, err := output.NewAdapter(genFormat)
	if err != nil {
		return err
	}

	if genFromJSON != "" {
		return generateFromJSON(cmd, form, adapter)
	}

	rt, err := newRuntime(cfg, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	prepared, err := rt.svc.Prepare(form)
	if err != nil {
		return err
	}
	userPrompt := core.BuildUserPrompt(prepared.Selection, core.ContractFor(prepared.Mode))

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "%s › %s › %s (%s mode)\n", prepared.Selection.Domain, prepared.Selection.Process, prepared.Selection.Focus, prepared.Mode)
	fmt.Fprintln(stderr, tui.RenderStageStart("generate", rt.modelLabel(), tui.CountTokens(core.SystemPrompt+userPrompt)))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	requestID := uuid.NewString()
	result, err := rt.svc.RunWithID(ctx, requestID, form)
	if err != nil {
		if saveErr := saveRaw(core.RawPayloads(err)); saveErr != nil {
			fmt.Fprintln(stderr, tui.WarningStyle.Render(saveErr.Error()))
		}
		if rerr := output.RenderFailure(stderr, err, "markdown", output.Config{}); rerr != nil {
			return rerr
		}
		return fmt.Errorf("generation failed (request %s): %w", requestID, err)
	}

	for _, stage := range tui.StagesFromResult(result, rt.modelLabel(), rt.repairModelLabel()) {
		fmt.Fprintln(stderr, tui.RenderStageComplete(stage))
	}
	fmt.Fprint(stderr, tui.RenderWarnings(result.Warnings))
	fmt.Fprint(stderr, tui.RenderActorMix(result.Document))

	raw := result.Raw
	if result.Repaired {
		raw = result.RepairRaw
	}
	if err := saveRaw([]core.Payload{{Label: "model output", Text: raw}}); err != nil {
		return err
	}

	catalog := rt.svc.Catalog()
	if err := writeResult(cmd, adapter, result, catalog.Heading(), catalog.Year); err != nil {
		return err
	}
	fmt.Fprint(stderr, tui.RenderSummary(tui.StagesFromResult(result, rt.modelLabel(), rt.repairModelLabel())))
	return nil
}

// generateFromJSON reruns parse, validate and normalize on saved output.
func generateFromJSON(cmd *cobra.Command, form service.Form, adapter output.Adapter) error {
	data, err := os.ReadFile(genFromJSON)
	if err != nil {
		return fmt.Errorf("failed to read saved output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Processing saved output: %s\n", genFromJSON)

	mode, err := core.ParseMode(form.Mode)
	if err != nil {
		return err
	}
	if form.Mode == "" && strings.TrimSpace(form.CustomSteps) != "" {
		mode = core.ModeMapping
	}

	raw := string(data)
	doc, err := core.ProcessRaw(raw, mode)
	if err != nil {
		if rerr := output.RenderFailure(cmd.ErrOrStderr(), err, "markdown", output.Config{}); rerr != nil {
			return rerr
		}
		return err
	}
	if doc.Domain == "" {
		doc.Domain = form.Domain
	}
	if doc.Process == "" {
		doc.Process = form.Process
	}
	if doc.SubProcess == "" {
		doc.SubProcess = form.Focus
	}

	result := &core.Result{
		RequestID: uuid.NewString(),
		Mode:      mode,
		Document:  doc,
		Warnings:  doc.Warnings(),
		Raw:       raw,
	}
	fmt.Fprint(cmd.ErrOrStderr(), tui.RenderWarnings(result.Warnings))
	fmt.Fprint(cmd.ErrOrStderr(), tui.RenderActorMix(result.Document))
	return writeResult(cmd, adapter, result, "", core.DefaultYear)
}

func writeResult(cmd *cobra.Command, adapter output.Adapter, result *core.Result, heading string, year int) error {
	outCfg := output.Config{
		Heading:    heading,
		Year:       year,
		Standalone: genStandalone,
		IncludeRaw: genIncludeRaw,
		WordWrap:   genWordWrap,
	}

	var w io.Writer = cmd.OutOrStdout()
	if genOutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(genOutputPath), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(genOutputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := adapter.Render(w, result, outCfg); err != nil {
		return fmt.Errorf("failed to render %s output: %w", adapter.Name(), err)
	}
	if genOutputPath != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), tui.SuccessStyle.Render("✓")+" Wrote "+genOutputPath)
	}
	return nil
}

// saveRaw writes the last payload to --save-json, if set. The last payload
// is the repair output when there was one.
func saveRaw(payloads []core.Payload) error {
	if genSaveJSON == "" || len(payloads) == 0 {
		return nil
	}
	text := payloads[len(payloads)-1].Text
	if text == "" {
		text = payloads[0].Text
	}
	if text == "" {
		return errors.New("no model output to save")
	}
	if err := os.WriteFile(genSaveJSON, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to save model output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Saved model output to: %s\n", genSaveJSON)
	return nil
}
