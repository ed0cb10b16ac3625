package cmd

import (
	"github.com/spf13/cobra"

	"github.com/leoyyy3/mericoComment/core"
	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/internal/llm"
	"github.com/leoyyy3/mericoComment/internal/mcp"
	"github.com/leoyyy3/mericoComment/internal/merico"
	"github.com/leoyyy3/mericoComment/internal/tapd"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Merico analysis MCP server",
	Long:  `Launch an MCP server that allows AI agents to run the analysis pipelines and generate weekly reports via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Stdout carries the protocol here, so each tool call gets a
		// fresh runner with console rendering forced off.
		return sharedSetup(cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		factory := func(c *contract.Config) mcp.AnalysisRunner {
			return core.NewAnalysisService(c, merico.NewClient(c))
		}

		var weekly mcp.WeeklyRunner
		if cfg.RequireLLMCredentials() == nil {
			completer, err := llm.NewGeminiClient(rootCtx, cfg)
			if err != nil {
				return err
			}
			weekly = core.NewWeeklyGenerator(tapd.NewClient(cfg), completer, cfg.OutputDir)
		}

		return mcp.StartMCPServer(rootCtx, cfg, factory, weekly)
	},
}
