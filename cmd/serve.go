package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leoyyy3/mericoComment/core"
	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/internal/llm"
	"github.com/leoyyy3/mericoComment/internal/merico"
	"github.com/leoyyy3/mericoComment/internal/server"
	"github.com/leoyyy3/mericoComment/internal/tapd"
)

// serveCmd starts the REST API with the optional daily scheduler.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server.",
	Long: `Expose the analysis pipelines, report downloads and weekly-report
generation over a REST API. With --schedule, both pipelines also run
automatically once a day at the configured time.

The weekly-report endpoints are only mounted when an LLM API key is
configured; without one they answer 503.

Examples:
  # Serve on the configured host and port
  mericoreport serve

  # Serve on port 9000 with the daily scheduler enabled
  mericoreport serve --port 9000 --schedule`,
	PreRunE: sharedSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc := core.NewAnalysisService(cfg, merico.NewClient(cfg))

		// The weekly service stays nil when no LLM key is configured;
		// the server degrades those endpoints instead of failing startup.
		var weekly server.WeeklyService
		if cfg.RequireLLMCredentials() == nil {
			completer, err := llm.NewGeminiClient(ctx, cfg)
			if err != nil {
				return err
			}
			weekly = core.NewWeeklyGenerator(tapd.NewClient(cfg), completer, cfg.OutputDir)
		} else {
			contract.Warning("weekly-report endpoints disabled: no LLM API key configured")
		}

		return server.New(cfg, svc, weekly).ListenAndServe(ctx)
	},
}
