// Package cmd defines the command-line interface for mericoreport.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(dataAnalyzeCmd)
	rootCmd.AddCommand(fetchDuplicateCmd)
	rootCmd.AddCommand(weeklyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Persistent flags bind to dotted viper keys so they merge with the
	// nested JSON config file.
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file")
	pf.String("format", string(schema.TextOut), "Output format: text or csv or json or html or parquet")
	pf.String("output-dir", "", "Directory for generated artifacts")
	pf.Int("top-n", contract.DefaultTopN, "Number of entries in ranked views")
	pf.Int("width", 0, "Terminal width override (0 = auto-detect)")
	pf.Bool("color", true, "Enable colored console output")
	pf.Int("max-projects", 0, "Cap on the number of projects fetched (0 = all)")
	bindRootFlag("config", "config")
	bindRootFlag("output.format", "format")
	bindRootFlag("output.output_dir", "output-dir")
	bindRootFlag("output.top_n", "top-n")
	bindRootFlag("output.width", "width")
	bindRootFlag("output.color", "color")
	bindRootFlag("merico.max_projects", "max-projects")

	// analyze flags
	analyzeCmd.Flags().String("type", string(schema.AllAnalysis), "Analysis type: all or uncommented or duplicate")
	analyzeCmd.Flags().Bool("save-raw", false, "Snapshot raw fetch results as JSON")
	analyzeCmd.Flags().Bool("save-classified", false, "Snapshot the classified report as JSON")
	// --detail is read per command in Run: binding the same viper key
	// from two commands would leave only the last bind live.
	analyzeCmd.Flags().Bool("detail", false, "Export a per-project, per-file Markdown breakdown")
	_ = viper.BindPFlag("output.save_raw", analyzeCmd.Flags().Lookup("save-raw"))
	_ = viper.BindPFlag("output.save_classified", analyzeCmd.Flags().Lookup("save-classified"))

	// data-analyze flags
	dataAnalyzeCmd.Flags().String("file", "", "Path to a raw results snapshot")
	dataAnalyzeCmd.Flags().Bool("detail", false, "Export a per-project, per-file Markdown breakdown")
	_ = dataAnalyzeCmd.MarkFlagRequired("file")

	// weekly flags
	weeklyCmd.Flags().String("entity-id", "", "TAPD entity (story/task) identifier")
	weeklyCmd.Flags().String("workspace-id", "", "TAPD workspace identifier")
	weeklyCmd.Flags().String("prompt-file", "", "File whose contents replace the default prompt template")
	_ = weeklyCmd.MarkFlagRequired("entity-id")
	_ = weeklyCmd.MarkFlagRequired("workspace-id")

	// serve flags
	serveCmd.Flags().Int("port", 0, "Port to listen on")
	serveCmd.Flags().Bool("schedule", false, "Enable the daily analysis scheduler")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("schedule.enabled", serveCmd.Flags().Lookup("schedule"))
}

// bindRootFlag maps one persistent flag onto a dotted viper key.
func bindRootFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}
}
