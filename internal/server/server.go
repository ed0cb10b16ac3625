// Package server exposes the analysis pipelines over REST and hosts
// the daily scheduler.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leoyyy3/mericoComment/core"
	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/schema"
)

// AnalysisRunner triggers analysis pipelines and lists their artifacts.
// Satisfied by core.AnalysisService.
type AnalysisRunner interface {
	Run(ctx context.Context, typ schema.AnalysisType) ([]core.RunOutcome, error)
	ListReports() ([]schema.ReportFile, error)
}

// WeeklyService generates and lists weekly reports. Satisfied by
// core.WeeklyGenerator. Nil when LLM credentials are not configured.
type WeeklyService interface {
	Generate(ctx context.Context, entityID, workspaceID, customPrompt string) (string, error)
	GenerateAndSave(ctx context.Context, entityID, workspaceID, customPrompt string) (string, string, error)
	ListReports() ([]schema.ReportFile, error)
	ReportsDir() string
}

// apiResponse is the uniform JSON envelope for every endpoint.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Server is the REST facade over the analysis and weekly services.
type Server struct {
	cfg       *contract.Config
	analysis  AnalysisRunner
	weekly    WeeklyService
	scheduler *Scheduler
	startedAt time.Time
}

// New builds the server. weekly may be nil when the LLM is not
// configured; its endpoints then answer 503.
func New(cfg *contract.Config, analysis AnalysisRunner, weekly WeeklyService) *Server {
	s := &Server{
		cfg:       cfg,
		analysis:  analysis,
		weekly:    weekly,
		startedAt: time.Now(),
	}
	if cfg.ScheduleEnabled {
		s.scheduler = NewScheduler(cfg, analysis)
	}
	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/analysis/{type}/run", s.handleRunAnalysis)
	mux.HandleFunc("GET /api/analysis/reports", s.handleListReports)
	mux.HandleFunc("GET /output/{file}", s.handleDownload)
	mux.HandleFunc("POST /api/weekly-report/generate", s.handleWeeklyGenerate)
	mux.HandleFunc("POST /api/weekly-report/download", s.handleWeeklyExport)
	mux.HandleFunc("GET /api/weekly-report/list", s.handleWeeklyList)
	mux.HandleFunc("GET /api/weekly-report/download/{file}", s.handleWeeklyDownload)
	return mux
}

// ListenAndServe runs the HTTP server and the scheduler until ctx is
// canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.scheduler != nil {
		s.scheduler.Start(ctx)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.ServerHost, s.cfg.ServerPort),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		contract.Info("🚀 serving on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func writeResponse(w http.ResponseWriter, status int, resp apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeSuccess(w http.ResponseWriter, message string, data any) {
	writeResponse(w, http.StatusOK, apiResponse{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeResponse(w, status, apiResponse{Success: false, Message: message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, "ok", map[string]any{
		"status": "running",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	files, err := s.analysis.ListReports()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := map[string]any{
		"status":              "running",
		"uptime":              time.Since(s.startedAt).Round(time.Second).String(),
		"uncommented_reports": latestByPrefix(files, "uncommented"),
		"duplicate_reports":   latestByPrefix(files, "duplicate"),
		"total_reports":       len(files),
	}
	if s.scheduler != nil {
		status["next_scheduled_run"] = s.scheduler.NextRun().Format(contract.DateTimeFormat)
	}
	writeSuccess(w, "ok", status)
}

// latestByPrefix summarizes the report group with the given name prefix.
func latestByPrefix(files []schema.ReportFile, prefix string) map[string]any {
	var matched []schema.ReportFile
	for _, f := range files {
		if strings.HasPrefix(f.Name, prefix) {
			matched = append(matched, f)
		}
	}
	summary := map[string]any{"total": len(matched)}
	if len(matched) > 0 {
		// files arrive newest first
		summary["latest"] = matched[0]
	}
	return summary
}

func (s *Server) handleRunAnalysis(w http.ResponseWriter, r *http.Request) {
	typ := schema.AnalysisType(r.PathValue("type"))
	switch typ {
	case schema.AllAnalysis, schema.UncommentedAnalysis, schema.DuplicateAnalysis:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid analysis type %q", typ))
		return
	}

	outcomes, err := s.analysis.Run(r.Context(), typ)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeSuccess(w, fmt.Sprintf("%s analysis completed", typ), outcomes)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	files, err := s.analysis.ListReports()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeSuccess(w, "ok", files)
}

// serveFile sends one file from dir, refusing anything that would
// escape it.
func serveFile(w http.ResponseWriter, r *http.Request, dir, name string) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		writeError(w, http.StatusBadRequest, "invalid file name")
		return
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("report %s not found", name))
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	serveFile(w, r, s.cfg.OutputDir, r.PathValue("file"))
}

type weeklyRequest struct {
	EntityID     string `json:"entity_id"`
	WorkspaceID  string `json:"workspace_id"`
	CustomPrompt string `json:"custom_prompt,omitempty"`
}

func (s *Server) handleWeeklyGenerate(w http.ResponseWriter, r *http.Request) {
	if s.weekly == nil {
		writeError(w, http.StatusServiceUnavailable, "weekly reports are not configured")
		return
	}

	var req weeklyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.EntityID == "" || req.WorkspaceID == "" {
		writeError(w, http.StatusBadRequest, "entity_id and workspace_id are required")
		return
	}

	report, path, err := s.weekly.GenerateAndSave(r.Context(), req.EntityID, req.WorkspaceID, req.CustomPrompt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeSuccess(w, "weekly report generated", map[string]any{
		"report": report,
		"file":   filepath.Base(path),
	})
}

// handleWeeklyExport generates a report and streams it back as a
// Markdown attachment without keeping a copy on disk.
func (s *Server) handleWeeklyExport(w http.ResponseWriter, r *http.Request) {
	if s.weekly == nil {
		writeError(w, http.StatusServiceUnavailable, "weekly reports are not configured")
		return
	}

	var req weeklyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.EntityID == "" || req.WorkspaceID == "" {
		writeError(w, http.StatusBadRequest, "entity_id and workspace_id are required")
		return
	}

	report, err := s.weekly.Generate(r.Context(), req.EntityID, req.WorkspaceID, req.CustomPrompt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := fmt.Sprintf("weekly_report_%s_%s.md", req.EntityID, time.Now().Format(contract.TimestampFormat))
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write([]byte(report))
}

func (s *Server) handleWeeklyList(w http.ResponseWriter, r *http.Request) {
	if s.weekly == nil {
		writeError(w, http.StatusServiceUnavailable, "weekly reports are not configured")
		return
	}
	files, err := s.weekly.ListReports()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeSuccess(w, "ok", files)
}

func (s *Server) handleWeeklyDownload(w http.ResponseWriter, r *http.Request) {
	if s.weekly == nil {
		writeError(w, http.StatusServiceUnavailable, "weekly reports are not configured")
		return
	}
	serveFile(w, r, s.weekly.ReportsDir(), r.PathValue("file"))
}
