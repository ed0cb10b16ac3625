package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leoyyy3/mericoComment/core"
	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/internal/llm"
	"github.com/leoyyy3/mericoComment/internal/tapd"
)

// weeklyCmd summarizes TAPD commit history into a weekly report.
var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Generate an LLM weekly report from TAPD commits.",
	Long: `Fetch every commit linked to a TAPD story and summarize the work into
a Markdown weekly report with Gemini. The report is printed and saved
under the output directory.

Examples:
  # Summarize one story
  mericoreport weekly --entity-id 1148391 --workspace-id 54321

  # Steer the summary with a custom prompt
  mericoreport weekly --entity-id 1148391 --workspace-id 54321 --prompt-file refactor_focus.txt`,
	PreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := cfg.RequireLLMCredentials(); err != nil {
			contract.LogFatal("Missing credentials", err)
		}

		entityID := cmd.Flag("entity-id").Value.String()
		workspaceID := cmd.Flag("workspace-id").Value.String()

		var prompt string
		if path := cmd.Flag("prompt-file").Value.String(); path != "" {
			raw, err := os.ReadFile(path)
			if err != nil {
				contract.LogFatal("Cannot read prompt file", err)
			}
			prompt = string(raw)
		}

		completer, err := llm.NewGeminiClient(rootCtx, cfg)
		if err != nil {
			contract.LogFatal("Cannot create LLM client", err)
		}

		gen := core.NewWeeklyGenerator(tapd.NewClient(cfg), completer, cfg.OutputDir)
		// GenerateAndSave already logs the saved path.
		report, _, err := gen.GenerateAndSave(rootCtx, entityID, workspaceID, prompt)
		if err != nil {
			contract.LogFatal("Cannot generate weekly report", err)
		}

		fmt.Println(report)
	},
}
