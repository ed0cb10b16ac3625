package cmd

import (
	"github.com/spf13/cobra"

	"github.com/leoyyy3/mericoComment/core"
	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/internal/merico"
	"github.com/leoyyy3/mericoComment/schema"
)

// analyzeCmd runs the fetch, classify, render pipeline.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fetch flagged functions and render quality reports.",
	Long: `Poll the Merico quality APIs for every configured project and reduce
the listings into severity, type and rule histograms.

Examples:
  # Run both pipelines with console output
  mericoreport analyze

  # Uncommented-function analysis only, exported as CSV
  mericoreport analyze --type uncommented --format csv

  # Keep raw payload snapshots for later offline reclassification
  mericoreport analyze --save-raw

  # Quick smoke run against the first three projects
  mericoreport analyze --max-projects 3`,
	PreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		typ := schema.AnalysisType(cmd.Flag("type").Value.String())
		if err := requireCredentialsFor(typ); err != nil {
			contract.LogFatal("Missing credentials", err)
		}
		if detail, _ := cmd.Flags().GetBool("detail"); detail {
			cfg.DetailExport = true
		}

		if f := contract.SetupRunLog(cfg.LogDir, "analyze"); f != nil {
			defer f.Close()
		}

		svc := core.NewAnalysisService(cfg, merico.NewClient(cfg))
		if _, err := svc.Run(rootCtx, typ); err != nil {
			contract.LogFatal("Cannot run analysis", err)
		}
	},
}

// requireCredentialsFor checks only the endpoints the run will touch.
func requireCredentialsFor(typ schema.AnalysisType) error {
	switch typ {
	case schema.UncommentedAnalysis:
		return cfg.RequireMericoCredentials()
	case schema.DuplicateAnalysis:
		return cfg.RequireDuplicateCredentials()
	default:
		if err := cfg.RequireMericoCredentials(); err != nil {
			return err
		}
		return cfg.RequireDuplicateCredentials()
	}
}
