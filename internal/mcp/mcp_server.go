// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leoyyy3/mericoComment/internal/contract"
)

// NewMCPServer initializes and configures the analysis MCP server
// without starting it. This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, analysis AnalysisFactory, weekly WeeklyRunner) *server.MCPServer {
	s := server.NewMCPServer(
		"Merico Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:  baseCfg,
		analysis: analysis,
		weekly:   weekly,
	}

	s.AddTool(mcp.NewTool("run_uncommented_analysis",
		mcp.WithDescription("Fetch the uncommented-function listings for all configured projects and return the aggregated report."),
		mcp.WithNumber("max_projects", mcp.Description("Cap on the number of projects fetched.")),
	), h.handleRunUncommented)

	s.AddTool(mcp.NewTool("run_duplicate_analysis",
		mcp.WithDescription("Fetch the duplicate function groups for all configured projects and return the aggregated report."),
		mcp.WithNumber("max_projects", mcp.Description("Cap on the number of projects fetched.")),
	), h.handleRunDuplicate)

	s.AddTool(mcp.NewTool("generate_weekly_report",
		mcp.WithDescription("Generate a prose weekly report from the commit history of a TAPD entity."),
		mcp.WithString("entity_id", mcp.Description("TAPD entity (story/task) identifier."), mcp.Required()),
		mcp.WithString("workspace_id", mcp.Description("TAPD workspace identifier."), mcp.Required()),
		mcp.WithString("custom_prompt", mcp.Description("Replacement for the default prompt template.")),
	), h.handleGenerateWeekly)

	return s
}

// StartMCPServer starts the analysis MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, analysis AnalysisFactory, weekly WeeklyRunner) error {
	s := NewMCPServer(baseCfg, analysis, weekly)
	return server.ServeStdio(s)
}
