package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/internal/merico"
	"github.com/leoyyy3/mericoComment/internal/outwriter"
	"github.com/leoyyy3/mericoComment/schema"
)

// ListingFetcher pulls raw per-project payloads from the quality APIs.
// Satisfied by the Merico client.
type ListingFetcher interface {
	FetchAll(ctx context.Context, repoIDs []string) []schema.FetchResult
	FetchAllDuplicates(ctx context.Context, repoIDs []string) []schema.FetchResult
}

// RunOutcome summarizes one analysis run for callers that only need
// totals and artifact paths, like the REST layer.
type RunOutcome struct {
	Type      schema.AnalysisType `json:"type"`
	Summary   schema.Summary      `json:"summary"`
	Artifacts []string            `json:"artifacts,omitempty"`
}

// AnalysisService runs the fetch, classify, render pipeline end to end.
// Rendering and snapshot failures are soft: they are logged and the run
// carries on, so a full fetch is never thrown away over a disk error.
type AnalysisService struct {
	cfg     *contract.Config
	fetcher ListingFetcher
	writer  *outwriter.OutWriter
	names   map[string]string
}

// NewAnalysisService wires the pipeline together.
func NewAnalysisService(cfg *contract.Config, fetcher ListingFetcher) *AnalysisService {
	return &AnalysisService{
		cfg:     cfg,
		fetcher: fetcher,
		writer:  outwriter.NewOutWriter(),
	}
}

// loadRepoIDs reads the project list and applies the MaxProjects cap.
func (s *AnalysisService) loadRepoIDs() ([]string, error) {
	ids, err := merico.LoadRepoIDs(s.cfg.RepoIDsFile)
	if err != nil {
		return nil, err
	}
	if s.cfg.MaxProjects > 0 && len(ids) > s.cfg.MaxProjects {
		ids = ids[:s.cfg.MaxProjects]
	}
	contract.Info("loaded %d project ids", len(ids))
	return ids, nil
}

// repoNames loads the project display-name mapping once per service.
// The mapping is cosmetic, so a missing or broken file degrades to raw
// project ids with a warning.
func (s *AnalysisService) repoNames() map[string]string {
	if s.names == nil {
		names, err := merico.LoadRepoNames(s.cfg.RepoNamesFile)
		if err != nil {
			contract.Warning("could not load repo name mapping: %v", err)
			names = map[string]string{}
		}
		s.names = names
	}
	return s.names
}

// labelProjects stamps resolved display names onto the report and its
// records, so consoles, charts and CSV exports all show them.
func (s *AnalysisService) labelProjects(report *schema.AggregateReport) {
	names := s.repoNames()
	if len(names) == 0 {
		return
	}
	report.ProjectNames = names
	for _, rec := range report.AllRecords {
		if name, ok := names[rec.ProjectID()]; ok && name != "" {
			rec[schema.FieldProjectName] = name
		}
	}
}

func (s *AnalysisService) labelDuplicateProjects(report *schema.DuplicateReport) {
	names := s.repoNames()
	if len(names) == 0 {
		return
	}
	report.ProjectNames = names
	for i := range report.ProjectSummaries {
		report.ProjectSummaries[i].ProjectName = names[report.ProjectSummaries[i].ProjectID]
	}
}

// RunUncommented fetches and classifies the flagged-function listings
// for every configured project.
func (s *AnalysisService) RunUncommented(ctx context.Context) (*schema.AggregateReport, []string, error) {
	ids, err := s.loadRepoIDs()
	if err != nil {
		return nil, nil, err
	}

	results := s.fetcher.FetchAll(ctx, ids)
	if s.cfg.SaveRaw {
		if path, err := s.writer.SaveRawResults(results, s.cfg, "uncommented"); err != nil {
			contract.Warning("could not save raw results: %v", err)
		} else {
			contract.Info("raw results saved to %s", path)
		}
	}

	report := Classify(results)
	s.labelProjects(report)
	artifacts := s.renderAggregate(report)
	return report, artifacts, nil
}

func (s *AnalysisService) renderAggregate(report *schema.AggregateReport) []string {
	if s.cfg.SaveClassified {
		if path, err := s.writer.SaveClassified(report, s.cfg, "uncommented"); err != nil {
			contract.Warning("could not save classified report: %v", err)
		} else {
			contract.Info("classified report saved to %s", path)
		}
	}

	artifacts, err := s.writer.WriteAggregate(report, s.cfg)
	if err != nil {
		contract.Warning("report rendering failed: %v", err)
	}

	if s.cfg.DetailExport {
		if path, err := s.writer.SaveProjectDetail(report, s.cfg); err != nil {
			contract.Warning("could not write detail export: %v", err)
		} else {
			artifacts = append(artifacts, path)
		}
	}
	return artifacts
}

// RunDuplicate fetches and aggregates the duplicate-function groups for
// every configured project.
func (s *AnalysisService) RunDuplicate(ctx context.Context) (*schema.DuplicateReport, []string, error) {
	ids, err := s.loadRepoIDs()
	if err != nil {
		return nil, nil, err
	}

	results := s.fetcher.FetchAllDuplicates(ctx, ids)
	if s.cfg.SaveRaw {
		if path, err := s.writer.SaveRawResults(results, s.cfg, "duplicate"); err != nil {
			contract.Warning("could not save raw results: %v", err)
		} else {
			contract.Info("raw results saved to %s", path)
		}
	}

	report := AggregateDuplicates(results, s.cfg.TopN)
	s.labelDuplicateProjects(report)
	if s.cfg.SaveClassified {
		if path, err := s.writer.SaveClassified(report, s.cfg, "duplicate"); err != nil {
			contract.Warning("could not save classified report: %v", err)
		} else {
			contract.Info("classified report saved to %s", path)
		}
	}

	artifacts, err := s.writer.WriteDuplicate(report, s.cfg)
	if err != nil {
		contract.Warning("report rendering failed: %v", err)
	}
	return report, artifacts, nil
}

// Run executes the requested analysis type and returns one outcome per
// pipeline that ran.
func (s *AnalysisService) Run(ctx context.Context, typ schema.AnalysisType) ([]RunOutcome, error) {
	var outcomes []RunOutcome

	if typ == schema.AllAnalysis || typ == schema.UncommentedAnalysis {
		report, artifacts, err := s.RunUncommented(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("uncommented analysis: %w", err)
		}
		outcomes = append(outcomes, RunOutcome{
			Type:      schema.UncommentedAnalysis,
			Summary:   report.Summary,
			Artifacts: artifacts,
		})
	}

	if typ == schema.AllAnalysis || typ == schema.DuplicateAnalysis {
		report, artifacts, err := s.RunDuplicate(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("duplicate analysis: %w", err)
		}
		outcomes = append(outcomes, RunOutcome{
			Type:      schema.DuplicateAnalysis,
			Summary:   report.Summary,
			Artifacts: artifacts,
		})
	}

	if len(outcomes) == 0 {
		return nil, fmt.Errorf("unknown analysis type %q", typ)
	}
	return outcomes, nil
}

// AnalyzeFile re-renders a previously saved snapshot, raw or
// classified, for offline inspection without refetching.
func (s *AnalysisService) AnalyzeFile(path string) (*schema.AggregateReport, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read results file: %w", err)
	}
	report, err := LoadReportFile(raw)
	if err != nil {
		return nil, nil, err
	}
	s.labelProjects(report)

	artifacts := s.renderAggregate(report)
	return report, artifacts, nil
}

// ListReports returns the generated artifacts in the output directory,
// newest first. Weekly reports live in their own subdirectory and are
// not included.
func (s *AnalysisService) ListReports() ([]schema.ReportFile, error) {
	entries, err := os.ReadDir(s.cfg.OutputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var files []schema.ReportFile
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, schema.ReportFile{
			Name:     entry.Name(),
			Path:     filepath.Join(s.cfg.OutputDir, entry.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}
	schema.SortReportFiles(files)
	return files, nil
}
