package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/schema"
)

// AnalysisRunner runs the analysis pipelines for one tool call.
type AnalysisRunner interface {
	RunUncommented(ctx context.Context) (*schema.AggregateReport, []string, error)
	RunDuplicate(ctx context.Context) (*schema.DuplicateReport, []string, error)
}

// AnalysisFactory builds a runner for a per-call config clone, so tool
// arguments can override limits without touching the base config.
type AnalysisFactory func(cfg *contract.Config) AnalysisRunner

// WeeklyRunner generates a weekly report. Nil when the LLM is not
// configured.
type WeeklyRunner interface {
	GenerateAndSave(ctx context.Context, entityID, workspaceID, customPrompt string) (string, string, error)
}

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg  *contract.Config
	analysis AnalysisFactory
	weekly   WeeklyRunner
}

// callCfg clones the base config and applies per-call overrides.
func (h *toolHandler) callCfg(request mcp.CallToolRequest) *contract.Config {
	cfg := h.baseCfg.Clone()
	if l := request.GetInt("max_projects", 0); l > 0 {
		cfg.MaxProjects = l
	}
	// Tool output is the JSON result itself. Stdout carries the
	// protocol frames, so console rendering must stay off it.
	cfg.Output = schema.JSONOut
	cfg.Quiet = true
	return cfg
}

func (h *toolHandler) handleRunUncommented(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, _, err := h.analysis(h.callCfg(request)).RunUncommented(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRunDuplicate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, _, err := h.analysis(h.callCfg(request)).RunDuplicate(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGenerateWeekly(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.weekly == nil {
		return mcp.NewToolResultError("weekly reports are not configured"), nil
	}

	entityID := request.GetString("entity_id", "")
	workspaceID := request.GetString("workspace_id", "")
	if entityID == "" || workspaceID == "" {
		return mcp.NewToolResultError("entity_id and workspace_id are required"), nil
	}

	report, path, err := h.weekly.GenerateAndSave(ctx, entityID, workspaceID, request.GetString("custom_prompt", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("weekly report failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(map[string]string{"report": report, "file": path}, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
