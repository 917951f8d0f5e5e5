package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dhabedank/workflow-lens/internal/config"
	"github.com/dhabedank/workflow-lens/internal/llm"
	"github.com/dhabedank/workflow-lens/internal/logging"
	"github.com/dhabedank/workflow-lens/internal/service"
	"github.com/dhabedank/workflow-lens/internal/submissions"
	"github.com/dhabedank/workflow-lens/internal/taxonomy"
)

var (
	configFile string // --config, shared by every command
	verbose    bool   // --verbose
)

// AddPersistentFlags registers flags shared by every subcommand.
func AddPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ./.workflow-lens.yaml, then ~/.workflow-lens.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}

// llmFlags are the provider flags of commands that generate.
type llmFlags struct {
	provider    string
	model       string
	repairModel string
	maxTokens   int
}

func (f *llmFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.provider, "llm", "l", "", "LLM provider (claude-cli/codex-cli/anthropic-api/openai-api/gemini-api, default: detect)")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model to use (provider-specific)")
	cmd.Flags().StringVar(&f.repairModel, "repair-model", "", "Model for the repair request (default: same as --model)")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 0, "Output token allowance for the primary request")
}

// apply overrides config values with flags the user actually set.
func (f *llmFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("llm") {
		cfg.LLM.Provider = f.provider
	}
	if cmd.Flags().Changed("model") {
		cfg.LLM.Model = f.model
	}
	if cmd.Flags().Changed("repair-model") {
		cfg.LLM.RepairModel = f.repairModel
	}
	if cmd.Flags().Changed("max-tokens") {
		cfg.Generation.MaxTokens = f.maxTokens
	}
}

// loadConfig reads the config file, lets flags override it and validates
// the result.
func loadConfig(cmd *cobra.Command, flags *llmFlags) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags != nil {
		flags.apply(cmd, cfg)
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runtime is everything a generating command needs.
type runtime struct {
	cfg      *config.Config
	svc      *service.Service
	store    *taxonomy.Store
	sink     submissions.Sink
	recorder *submissions.Recorder
	primary  llm.Adapter
	logs     io.Closer
}

// newRuntime sets up logging, the taxonomy store, the submission log and
// the generators. quiet raises the default log level to warn so progress
// output stays readable.
func newRuntime(cfg *config.Config, quiet bool) (*runtime, error) {
	logOpts := cfg.Logging
	if quiet && !verbose && logOpts.Level == "info" {
		logOpts.Level = "warn"
	}
	logs, err := logging.Setup(logOpts)
	if err != nil {
		return nil, err
	}

	catalog, err := taxonomy.Load(cfg.Taxonomy.Path)
	if err != nil {
		logs.Close()
		return nil, err
	}
	store := taxonomy.NewStore(catalog)

	primary, repair, err := llm.NewGenerators(cfg.LLM)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("failed to create LLM adapter: %w", err)
	}

	sink, err := submissions.Open(cfg.Submissions.Sink, cfg.Submissions.Target)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("failed to open submission log: %w", err)
	}
	recorder := submissions.NewRecorder(sink, cfg.Submissions.MaxInFlight, cfg.Submissions.Timeout)

	log.WithFields(log.Fields{
		"llm":         primary.Name(),
		"model":       cfg.LLM.Model,
		"submissions": sink.Name(),
	}).Debug("runtime ready")

	svc := service.New(service.Options{
		Generator:       primary,
		RepairGenerator: repair,
		Catalog:         store.Catalog,
		Recorder:        recorder,
		MaxTokens:       cfg.Generation.MaxTokens,
		RepairMaxTokens: cfg.Generation.RepairMaxTokens,
	})

	return &runtime{
		cfg:      cfg,
		svc:      svc,
		store:    store,
		sink:     sink,
		recorder: recorder,
		primary:  primary,
		logs:     logs,
	}, nil
}

// modelLabel names the primary model for progress lines.
func (r *runtime) modelLabel() string {
	if r.cfg.LLM.Model != "" {
		return r.cfg.LLM.Model
	}
	return r.primary.Name()
}

func (r *runtime) repairModelLabel() string {
	if r.cfg.LLM.RepairModel != "" {
		return r.cfg.LLM.RepairModel
	}
	return r.modelLabel()
}

// Close flushes the submission log and releases the log file.
func (r *runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.recorder.Close(ctx); err != nil {
		log.WithError(err).Warn("failed to close submission log")
	}
	r.logs.Close()
}
