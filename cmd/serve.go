package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dhabedank/workflow-lens/internal/server"
	"github.com/dhabedank/workflow-lens/internal/submissions"
)

var (
	serveLLM   llmFlags
	serveAddr  string
	serveWatch bool
)

// ServeCmd represents the serve command.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web form and JSON API",
	Long: `Serve the workflow lens over HTTP.

Routes:
  GET  /               selection form
  POST /generate       render a lens as an HTML page
  GET  /api/taxonomy   process catalog as JSON
  POST /api/generate   JSON in, JSON out
  GET  /healthz        liveness

With --watch the taxonomy file named in the config is reloaded on change.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveLLM.register(ServeCmd)
	ServeCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: :8080)")
	ServeCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload the taxonomy file when it changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &serveLLM)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("watch") {
		cfg.Taxonomy.Watch = serveWatch
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rt, err := newRuntime(cfg, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Taxonomy.Watch {
		go func() {
			if err := rt.store.Watch(ctx, cfg.Taxonomy.Path); err != nil {
				log.WithError(err).Error("taxonomy watcher stopped")
			}
		}()
	}

	srv, err := server.New(server.Options{
		Service: rt.svc,
		Config:  cfg.Server,
		Health: func() map[string]any {
			health := map[string]any{
				"llm":              rt.primary.Name(),
				"taxonomy_reloads": rt.store.Reloads(),
			}
			if db, ok := rt.sink.(*submissions.SQLiteSink); ok {
				countCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				defer cancel()
				if counts, err := db.CountByProcess(countCtx); err == nil {
					health["submissions_by_process"] = counts
				}
			}
			return health
		},
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"addr":        cfg.Server.Addr,
		"llm":         rt.primary.Name(),
		"submissions": cfg.Submissions.Sink,
	}).Info("starting workflow lens server")
	return srv.Run(ctx)
}
