// Package parquet exports flagged-function records to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/leoyyy3/mericoComment/schema"
)

// FlaggedFunction is the flattened, typed projection of one raw
// function record. Open-ended upstream fields are reduced to the
// columns the warehouse queries actually use.
type FlaggedFunction struct {
	// ProjectID is the owning repository identifier
	ProjectID string `parquet:"repo_id,snappy"`

	// ProjectName is the mapped display name when configured (nullable)
	ProjectName *string `parquet:"repo_name,optional,snappy"`

	// Severity is the upstream severity tag
	Severity string `parquet:"severity,snappy"`

	// Type is the upstream function type tag
	Type string `parquet:"type,snappy"`

	// Rule is the triggering rule, after the rule/ruleId fallback
	Rule string `parquet:"rule,snappy"`

	// FilePath is the path of the flagged function's file (nullable)
	FilePath *string `parquet:"file_path,optional,snappy"`

	// FunctionName is the flagged function's name (nullable)
	FunctionName *string `parquet:"function_name,optional,snappy"`

	// Cyclomatic is the cyclomatic complexity when reported (nullable)
	Cyclomatic *int32 `parquet:"cyclomatic,optional,snappy"`

	// StartLine is the function's first line when reported (nullable)
	StartLine *int32 `parquet:"start_line,optional,snappy"`
}

// Flatten projects a raw record onto the typed column set.
func Flatten(rec schema.FunctionRecord) FlaggedFunction {
	row := FlaggedFunction{
		ProjectID: rec.ProjectID(),
		Severity:  rec.Severity(),
		Type:      rec.Type(),
		Rule:      rec.Rule(),
	}
	if v := rec.StringField(schema.FieldProjectName, ""); v != "" {
		row.ProjectName = &v
	}
	if v := rec.StringField("filePath", ""); v != "" {
		row.FilePath = &v
	} else if v := rec.StringField("file_path", ""); v != "" {
		row.FilePath = &v
	}
	if v := rec.StringField("functionName", ""); v != "" {
		row.FunctionName = &v
	} else if v := rec.StringField("name", ""); v != "" {
		row.FunctionName = &v
	}
	if n, ok := intField(rec, "cyclomatic"); ok {
		row.Cyclomatic = &n
	}
	if n, ok := intField(rec, "startLine"); ok {
		row.StartLine = &n
	}
	return row
}

// WriteRecords flattens the records and writes them as one Parquet
// row group. The schema is inferred from the FlaggedFunction tags.
func WriteRecords(w io.Writer, records []schema.FunctionRecord) error {
	rows := make([]FlaggedFunction, len(records))
	for i, rec := range records {
		rows[i] = Flatten(rec)
	}

	writer := parquet.NewGenericWriter[FlaggedFunction](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// intField reads a numeric field. JSON numbers arrive as float64.
func intField(rec schema.FunctionRecord, key string) (int32, bool) {
	if v, ok := rec[key]; ok {
		if f, ok := v.(float64); ok {
			return int32(f), true
		}
	}
	return 0, false
}
