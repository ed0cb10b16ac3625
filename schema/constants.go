package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of rendered analysis output.
	OutputMode string

	// AnalysisType represents which analysis pipeline to run.
	AnalysisType string
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	HTMLOut    OutputMode = "html"
	ParquetOut OutputMode = "parquet"
)

// All analysis types supported.
const (
	AllAnalysis         AnalysisType = "all" // default
	UncommentedAnalysis AnalysisType = "uncommented"
	DuplicateAnalysis   AnalysisType = "duplicate"
)

// UnknownKey is the histogram bucket for records missing a severity,
// type or rule field.
const UnknownKey = "unknown"

// Well-known field names on raw function records.
const (
	FieldProjectID   = "repo_id"
	FieldProjectName = "repo_name"
	FieldSeverity    = "severity"
	FieldType        = "type"
	FieldRule        = "rule"
	FieldRuleID      = "ruleId"
)
