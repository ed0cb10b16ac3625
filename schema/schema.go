// Package schema has models and shared constants for all parts of mericoreport.
package schema

import (
	"encoding/json"
	"time"
)

// FetchResult captures one fetch attempt against the listing API for a
// single project. Exactly one of Payload and Err is set; the struct is
// never mutated after creation.
type FetchResult struct {
	ProjectID string          `json:"repo_id"`
	Payload   json.RawMessage `json:"data,omitempty"`
	Err       string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// OK reports whether the fetch succeeded.
func (r FetchResult) OK() bool {
	return r.Err == ""
}

// FunctionRecord is one flagged function occurrence. The upstream response
// shape is open-ended, so the record keeps the raw field mapping and exposes
// typed accessors for the fields the aggregation cares about.
type FunctionRecord map[string]any

// StringField returns the named field as a string, or fallback when the
// field is absent or not a string.
func (f FunctionRecord) StringField(key, fallback string) string {
	if v, ok := f[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// ProjectID returns the owning project identifier stamped by the classifier.
func (f FunctionRecord) ProjectID() string {
	return f.StringField(FieldProjectID, "")
}

// Severity returns the severity tag, defaulting to UnknownKey.
func (f FunctionRecord) Severity() string {
	return f.StringField(FieldSeverity, UnknownKey)
}

// Type returns the function type tag, defaulting to UnknownKey.
func (f FunctionRecord) Type() string {
	return f.StringField(FieldType, UnknownKey)
}

// Rule returns the rule tag, falling back to ruleId, then UnknownKey.
func (f FunctionRecord) Rule() string {
	if rule := f.StringField(FieldRule, ""); rule != "" {
		return rule
	}
	return f.StringField(FieldRuleID, UnknownKey)
}

// ProjectError records a project whose fetch failed after all retries.
type ProjectError struct {
	ProjectID string    `json:"repo_id"`
	Err       string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary holds the run-level totals of an aggregate report.
type Summary struct {
	TotalProjects      int `json:"total_projects"`
	SuccessfulProjects int `json:"successful_projects"`
	FailedProjects     int `json:"failed_projects"`
	TotalFunctionCount int `json:"total_function_count"`
}

// AggregateReport is the sole artifact of a classification run. It is built
// once from a list of FetchResult and read-only thereafter.
type AggregateReport struct {
	Summary      Summary           `json:"summary"`
	BySeverity   map[string]int    `json:"by_severity"`
	ByType       map[string]int    `json:"by_type"`
	ByRule       map[string]int    `json:"by_rule"`
	AllRecords   []FunctionRecord  `json:"all_records"`
	ProjectNames map[string]string `json:"project_names,omitempty"`
	Errors       []ProjectError    `json:"errors"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// ProjectLabel resolves a project id to its display name, falling back
// to the raw id when no mapping entry exists.
func (r *AggregateReport) ProjectLabel(id string) string {
	return projectLabel(r.ProjectNames, id)
}

// ProjectCounts returns the number of records per owning project.
func (r *AggregateReport) ProjectCounts() map[string]int {
	counts := make(map[string]int)
	for _, rec := range r.AllRecords {
		if id := rec.ProjectID(); id != "" {
			counts[id]++
		}
	}
	return counts
}

// TypesBySeverity counts records per function type within each severity.
func (r *AggregateReport) TypesBySeverity() map[string]map[string]int {
	cross := make(map[string]map[string]int)
	for _, rec := range r.AllRecords {
		sev := rec.Severity()
		if cross[sev] == nil {
			cross[sev] = make(map[string]int)
		}
		cross[sev][rec.Type()]++
	}
	return cross
}

// SuccessRate returns the fetch success percentage for the run.
func (r *AggregateReport) SuccessRate() float64 {
	if r.Summary.TotalProjects == 0 {
		return 0
	}
	return float64(r.Summary.SuccessfulProjects) / float64(r.Summary.TotalProjects) * 100
}

// DuplicateGroup is a cluster of near-identical function implementations
// detected by the upstream duplicate API.
type DuplicateGroup struct {
	GroupName     string   `json:"groupName"`
	NumFunctions  int      `json:"numFunctions"`
	NumFiles      int      `json:"numFiles"`
	MaxComplexity int      `json:"maxComplexity"`
	AvgLines      float64  `json:"avgLines"`
	Language      string   `json:"language"`
	FilePaths     []string `json:"filePaths"`
	Emails        []string `json:"emails"`
	ProjectID     string   `json:"repo_id,omitempty"`
}

// DuplicateProjectSummary aggregates duplicate groups for one project.
type DuplicateProjectSummary struct {
	ProjectID      string `json:"repo_id"`
	ProjectName    string `json:"repo_name,omitempty"`
	TotalGroups    int    `json:"total_groups"`
	TotalFunctions int    `json:"total_functions"`
}

// DuplicateReport is the aggregate view over all fetched duplicate groups.
type DuplicateReport struct {
	Summary          Summary                   `json:"summary"`
	TotalGroups      int                       `json:"total_groups"`
	TotalFunctions   int                       `json:"total_functions"`
	ByLanguage       map[string]int            `json:"by_language"`
	ByComplexity     map[string]int            `json:"by_complexity"`
	TopGroups        []DuplicateGroup          `json:"top_groups"`
	ProjectSummaries []DuplicateProjectSummary `json:"projects_summary"`
	ProjectNames     map[string]string         `json:"project_names,omitempty"`
	Errors           []ProjectError            `json:"errors"`
	GeneratedAt      time.Time                 `json:"generated_at"`
}

// ProjectLabel resolves a project id to its display name, falling back
// to the raw id when no mapping entry exists.
func (r *DuplicateReport) ProjectLabel(id string) string {
	return projectLabel(r.ProjectNames, id)
}

func projectLabel(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}

// CommitRecord is one source-control commit from the commit-history API,
// consumed only by the weekly narrative generator.
type CommitRecord struct {
	Message    string `json:"message"`
	UserName   string `json:"user_name"`
	CommitTime string `json:"commit_time"`
	CommitID   string `json:"commit_id"`
}

// ReportFile describes one generated artifact under the output directory.
type ReportFile struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}
