package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/internal/llm"
	"github.com/leoyyy3/mericoComment/schema"
)

// systemPrompt frames the model as a report writer for every weekly run.
const systemPrompt = "You are a technical weekly-report assistant. You analyze " +
	"source-control commit records and produce clear, professional weekly reports in Markdown."

// NoCommitsMessage is returned when an entity has no commit history;
// no LLM call is made in that case.
const NoCommitsMessage = "No commit records available for analysis."

// CommitFetcher pulls the full commit history for one entity.
// Satisfied by the TAPD client.
type CommitFetcher interface {
	FetchAllCommits(ctx context.Context, entityID, workspaceID string) ([]schema.CommitRecord, error)
}

// WeeklyGenerator turns an entity's commit history into a prose weekly
// report through a single LLM completion call.
type WeeklyGenerator struct {
	commits    CommitFetcher
	completer  llm.Completer
	reportsDir string
}

// NewWeeklyGenerator wires the commit source and model client together.
// Reports are saved under outputDir/weekly_reports.
func NewWeeklyGenerator(commits CommitFetcher, completer llm.Completer, outputDir string) *WeeklyGenerator {
	return &WeeklyGenerator{
		commits:    commits,
		completer:  completer,
		reportsDir: filepath.Join(outputDir, contract.DefaultWeeklyReportsDir),
	}
}

// ReportsDir returns the directory weekly reports are written to.
func (g *WeeklyGenerator) ReportsDir() string {
	return g.reportsDir
}

// Generate fetches all commits for the entity, builds a prompt and asks
// the model for a report. customPrompt, when non-empty, replaces the
// default template entirely. An entity without commits short-circuits
// before the model call. The LLM call is single-shot: its failure
// propagates to the caller.
func (g *WeeklyGenerator) Generate(ctx context.Context, entityID, workspaceID, customPrompt string) (string, error) {
	commits, err := g.commits.FetchAllCommits(ctx, entityID, workspaceID)
	if err != nil {
		return "", fmt.Errorf("fetch commits for entity %s: %w", entityID, err)
	}
	if len(commits) == 0 {
		contract.Warning("entity %s has no commits", entityID)
		return NoCommitsMessage, nil
	}

	prompt := customPrompt
	if prompt == "" {
		prompt = BuildWeeklyPrompt(commits)
	}

	report, err := g.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("generate weekly report: %w", err)
	}
	return report, nil
}

// GenerateAndSave runs Generate and writes the result as a timestamped
// Markdown file, returning the report text and its path.
func (g *WeeklyGenerator) GenerateAndSave(ctx context.Context, entityID, workspaceID, customPrompt string) (string, string, error) {
	report, err := g.Generate(ctx, entityID, workspaceID, customPrompt)
	if err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(g.reportsDir, 0o755); err != nil {
		return report, "", fmt.Errorf("create weekly reports dir: %w", err)
	}
	name := fmt.Sprintf("weekly_report_%s_%s.md", entityID, time.Now().Format(contract.TimestampFormat))
	path := filepath.Join(g.reportsDir, name)
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return report, "", fmt.Errorf("write weekly report: %w", err)
	}

	contract.Info("weekly report saved to %s", path)
	return report, path, nil
}

// ListReports returns the saved weekly reports, newest first.
func (g *WeeklyGenerator) ListReports() ([]schema.ReportFile, error) {
	entries, err := os.ReadDir(g.reportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []schema.ReportFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, schema.ReportFile{
			Name:     entry.Name(),
			Path:     filepath.Join(g.reportsDir, entry.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	schema.SortReportFiles(files)
	return files, nil
}

// GroupCommitsByAuthor splits commits per author, preserving
// first-seen author order so repeated runs over the same input produce
// the same prompt.
func GroupCommitsByAuthor(commits []schema.CommitRecord) ([]string, map[string][]schema.CommitRecord) {
	var order []string
	grouped := make(map[string][]schema.CommitRecord)
	for _, commit := range commits {
		author := commit.UserName
		if author == "" {
			author = schema.UnknownKey
		}
		if _, seen := grouped[author]; !seen {
			order = append(order, author)
		}
		grouped[author] = append(grouped[author], commit)
	}
	return order, grouped
}

// BuildWeeklyPrompt renders the default prompt: commit messages grouped
// by author followed by formatting instructions for the model.
func BuildWeeklyPrompt(commits []schema.CommitRecord) string {
	authors, grouped := GroupCommitsByAuthor(commits)

	var b strings.Builder
	b.WriteString("## Commit history\n\n")
	for _, author := range authors {
		fmt.Fprintf(&b, "### %s (%d commits)\n\n", author, len(grouped[author]))
		for _, commit := range grouped[author] {
			fmt.Fprintf(&b, "- time: %s\n  message: %s\n\n", commit.CommitTime, strings.TrimSpace(commit.Message))
		}
	}

	b.WriteString(`Write a professional technical weekly report from the commit records above.

Use this structure:

# Weekly Summary

## Overview
Briefly summarize the week's main work and outcomes.

## Work Details
Group the work by feature or task. For each item cover the completed
functionality or fixed problem, the technical approach, and any notable
challenges.

Keep the language concise, highlight the important work, and consolidate
related commits instead of listing them one by one.
`)
	return b.String()
}
