package cmd

import (
	"github.com/spf13/cobra"

	"github.com/leoyyy3/mericoComment/core"
	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/internal/merico"
)

// fetchDuplicateCmd runs the duplicate pipeline and always snapshots the
// raw payloads, for pipelines that post-process them elsewhere.
var fetchDuplicateCmd = &cobra.Command{
	Use:   "fetch-duplicate",
	Short: "Fetch duplicate-function groups and save the raw payloads.",
	Long: `Run the duplicate-function pipeline with raw snapshots forced on.

Examples:
  # Fetch every project's duplicate groups
  mericoreport fetch-duplicate

  # Export the aggregate as CSV at the same time
  mericoreport fetch-duplicate --format csv`,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := cfg.RequireDuplicateCredentials(); err != nil {
			contract.LogFatal("Missing credentials", err)
		}

		if f := contract.SetupRunLog(cfg.LogDir, "fetch_duplicate"); f != nil {
			defer f.Close()
		}

		cfg.SaveRaw = true
		svc := core.NewAnalysisService(cfg, merico.NewClient(cfg))
		if _, _, err := svc.RunDuplicate(rootCtx); err != nil {
			contract.LogFatal("Cannot fetch duplicates", err)
		}
	},
}
