// Package config loads workflow-lens settings from YAML, .env and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/dhabedank/workflow-lens/internal/core"
	"github.com/dhabedank/workflow-lens/internal/llm"
	"github.com/dhabedank/workflow-lens/internal/logging"
	"github.com/dhabedank/workflow-lens/internal/submissions"
)

// FileName is the config file looked up in the working and home directories.
const FileName = ".workflow-lens.yaml"

type Config struct {
	LLM         llm.Config        `yaml:"llm"`
	Generation  GenerationConfig  `yaml:"generation"`
	Server      ServerConfig      `yaml:"server"`
	Taxonomy    TaxonomyConfig    `yaml:"taxonomy"`
	Submissions SubmissionsConfig `yaml:"submissions"`
	Logging     logging.Options   `yaml:"logging"`

	// Path is the file the config was read from, empty if none.
	Path string `yaml:"-"`
}

type GenerationConfig struct {
	MaxTokens       int `yaml:"max_tokens"`
	RepairMaxTokens int `yaml:"repair_max_tokens"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	BodyLimit       string        `yaml:"body_limit"`
}

type TaxonomyConfig struct {
	// Path to a catalog YAML. Empty uses the embedded catalog.
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type SubmissionsConfig struct {
	Sink        string        `yaml:"sink"`
	Target      string        `yaml:"target"`
	MaxInFlight int64         `yaml:"max_in_flight"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LLM: llm.DefaultConfig(),
		Generation: GenerationConfig{
			MaxTokens:       core.DefaultMaxTokens,
			RepairMaxTokens: core.DefaultRepairMaxTokens,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    150 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			BodyLimit:       "64K",
		},
		Submissions: SubmissionsConfig{
			Sink:        submissions.KindNone,
			MaxInFlight: 8,
			Timeout:     5 * time.Second,
		},
		Logging: logging.DefaultOptions(),
	}
}

// DefaultPath is the config file in the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(home, FileName)
}

// Load reads path, or the first of ./.workflow-lens.yaml and
// ~/.workflow-lens.yaml that exists when path is empty. A .env file in the
// working directory is loaded first; variables already set win.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
			cfg.Path = path
			log.WithField("path", path).Debug("loaded config")
		case explicit || !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func findConfigFile() string {
	for _, candidate := range []string{FileName, DefaultPath()} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func (c *Config) applyEnv() error {
	envOverride(&c.LLM.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&c.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	if c.LLM.GeminiAPIKey == "" {
		envOverride(&c.LLM.GeminiAPIKey, "GOOGLE_API_KEY")
	}
	envOverride(&c.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	envOverride(&c.LLM.Provider, "WORKFLOW_LENS_PROVIDER")
	envOverride(&c.LLM.Model, "WORKFLOW_LENS_MODEL")
	envOverride(&c.LLM.RepairModel, "WORKFLOW_LENS_REPAIR_MODEL")
	envOverrideBool(&c.LLM.PreferCLI, "WORKFLOW_LENS_PREFER_CLI")
	envOverride(&c.Server.Addr, "WORKFLOW_LENS_ADDR")
	envOverride(&c.Logging.Level, "WORKFLOW_LENS_LOG_LEVEL")
	envOverride(&c.Logging.File, "WORKFLOW_LENS_LOG_FILE")
	envOverride(&c.Submissions.Sink, "WORKFLOW_LENS_SUBMISSIONS_SINK")
	envOverride(&c.Submissions.Target, "WORKFLOW_LENS_SUBMISSIONS_TARGET")
	envOverride(&c.Taxonomy.Path, "WORKFLOW_LENS_TAXONOMY")
	if err := envOverrideInt(&c.Generation.MaxTokens, "WORKFLOW_LENS_MAX_TOKENS"); err != nil {
		return err
	}
	return nil
}

// applyDefaults fills zero values left after the file and environment.
func (c *Config) applyDefaults() {
	d := Default()
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = d.LLM.Timeout
	}
	if c.LLM.Retry.Attempts == 0 {
		c.LLM.Retry = d.LLM.Retry
	}
	if c.Generation.MaxTokens == 0 {
		c.Generation.MaxTokens = d.Generation.MaxTokens
	}
	if c.Generation.RepairMaxTokens == 0 {
		c.Generation.RepairMaxTokens = d.Generation.RepairMaxTokens
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = d.Server.IdleTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Server.BodyLimit == "" {
		c.Server.BodyLimit = d.Server.BodyLimit
	}
	if c.Submissions.Sink == "" {
		c.Submissions.Sink = d.Submissions.Sink
	}
	if c.Submissions.MaxInFlight == 0 {
		c.Submissions.MaxInFlight = d.Submissions.MaxInFlight
	}
	if c.Submissions.Timeout == 0 {
		c.Submissions.Timeout = d.Submissions.Timeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.LLM.Provider != "" && !slices.Contains(llm.Providers, c.LLM.Provider) {
		return &core.ValidationError{Field: "llm.provider", Message: fmt.Sprintf("unknown provider %q (%s)", c.LLM.Provider, strings.Join(llm.Providers, "/"))}
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return &core.ValidationError{Field: "llm.temperature", Message: "must be between 0 and 2"}
	}
	if c.LLM.Retry.Attempts < 1 {
		return &core.ValidationError{Field: "llm.retry.attempts", Message: "must be >= 1"}
	}
	if c.Generation.MaxTokens < 200 {
		return &core.ValidationError{Field: "generation.max_tokens", Message: "must be >= 200"}
	}
	if c.Generation.RepairMaxTokens < 0 {
		return &core.ValidationError{Field: "generation.repair_max_tokens", Message: "must be >= 0"}
	}

	switch strings.ToLower(c.Submissions.Sink) {
	case submissions.KindNone:
	case submissions.KindCSV, submissions.KindSQLite, submissions.KindWebhook:
		if c.Submissions.Target == "" {
			return &core.ValidationError{Field: "submissions.target", Message: fmt.Sprintf("required for sink %q", c.Submissions.Sink)}
		}
	default:
		return &core.ValidationError{Field: "submissions.sink", Message: fmt.Sprintf("unknown sink %q (none/csv/sqlite/webhook)", c.Submissions.Sink)}
	}

	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return &core.ValidationError{Field: "logging.level", Message: err.Error()}
	}
	if c.Taxonomy.Watch && c.Taxonomy.Path == "" {
		return &core.ValidationError{Field: "taxonomy.watch", Message: "needs taxonomy.path"}
	}
	return nil
}

// Save writes cfg to path. API keys are never written.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = strings.EqualFold(val, "true") || val == "1"
	}
}
