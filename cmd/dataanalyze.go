package cmd

import (
	"github.com/spf13/cobra"

	"github.com/leoyyy3/mericoComment/core"
	"github.com/leoyyy3/mericoComment/internal/contract"
)

// dataAnalyzeCmd reclassifies a saved raw snapshot without any network calls.
var dataAnalyzeCmd = &cobra.Command{
	Use:   "data-analyze",
	Short: "Reclassify a raw results snapshot offline.",
	Long: `Re-run classification and rendering against a raw results file saved
by a previous run with --save-raw. No API calls are made, so this is
the fastest way to try a different output format or top-n cut on data
you already have.

Examples:
  # Render a snapshot as an HTML dashboard
  mericoreport data-analyze --file output/uncommented_raw_20250101_070000.json --format html

  # Re-cut the ranked tables with a different limit
  mericoreport data-analyze --file output/uncommented_raw_20250101_070000.json --top-n 50`,
	PreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		path := cmd.Flag("file").Value.String()
		if detail, _ := cmd.Flags().GetBool("detail"); detail {
			cfg.DetailExport = true
		}

		svc := core.NewAnalysisService(cfg, nil)
		if _, _, err := svc.AnalyzeFile(path); err != nil {
			contract.LogFatal("Cannot analyze file", err)
		}
	},
}
