package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/internal/parquet"
	"github.com/leoyyy3/mericoComment/schema"
)

// writeAggregateArtifacts writes the configured file artifacts for a
// flagged-function report and returns their paths.
func writeAggregateArtifacts(report *schema.AggregateReport, cfg *contract.Config) ([]string, error) {
	var paths []string
	stamp := report.GeneratedAt.Format(contract.TimestampFormat)

	switch cfg.Output {
	case schema.CSVOut:
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("uncommented_%s.csv", stamp))
		err := writeWithFile(path, func(w io.Writer) error {
			return WriteRecordsCSV(w, report.AllRecords)
		}, "Wrote CSV")
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	case schema.JSONOut:
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("uncommented_%s.json", stamp))
		err := writeWithFile(path, func(w io.Writer) error {
			return writeJSON(w, report, cfg.PrettyPrint)
		}, "Wrote JSON")
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	case schema.HTMLOut:
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("uncommented_%s.html", stamp))
		err := writeWithFile(path, func(w io.Writer) error {
			return writeAggregateHTML(w, report, cfg)
		}, "Wrote HTML")
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	case schema.ParquetOut:
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("uncommented_%s.parquet", stamp))
		err := writeWithFile(path, func(w io.Writer) error {
			return parquet.WriteRecords(w, report.AllRecords)
		}, "Wrote parquet")
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// writeDuplicateArtifacts writes the configured file artifacts for a
// duplicate-group report.
func writeDuplicateArtifacts(report *schema.DuplicateReport, cfg *contract.Config) ([]string, error) {
	var paths []string
	stamp := report.GeneratedAt.Format(contract.TimestampFormat)

	switch cfg.Output {
	case schema.CSVOut:
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("duplicate_%s.csv", stamp))
		err := writeWithFile(path, func(w io.Writer) error {
			return WriteGroupsCSV(w, report.TopGroups)
		}, "Wrote CSV")
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	case schema.JSONOut:
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("duplicate_%s.json", stamp))
		err := writeWithFile(path, func(w io.Writer) error {
			return writeJSON(w, report, cfg.PrettyPrint)
		}, "Wrote JSON")
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	case schema.HTMLOut:
		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("duplicate_%s.html", stamp))
		err := writeWithFile(path, func(w io.Writer) error {
			return writeDuplicateHTML(w, report, cfg)
		}, "Wrote HTML")
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteRecordsCSV writes one row per record with the union of all
// observed field names as the column set. Non-scalar field values are
// embedded as JSON.
func WriteRecordsCSV(w io.Writer, records []schema.FunctionRecord) error {
	fields := schema.FieldUnion(records)
	return writeCSVWithHeader(w, fields, func(cw *csv.Writer) error {
		for _, rec := range records {
			row := make([]string, len(fields))
			for i, field := range fields {
				row[i] = csvCell(rec[field])
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteGroupsCSV writes one row per duplicate group.
func WriteGroupsCSV(w io.Writer, groups []schema.DuplicateGroup) error {
	header := []string{"groupName", "numFunctions", "numFiles", "maxComplexity", "avgLines", "language", "filePaths", "emails", "repo_id"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, g := range groups {
			row := []string{
				g.GroupName,
				strconv.Itoa(g.NumFunctions),
				strconv.Itoa(g.NumFiles),
				strconv.Itoa(g.MaxComplexity),
				strconv.FormatFloat(g.AvgLines, 'f', -1, 64),
				g.Language,
				strings.Join(g.FilePaths, ";"),
				strings.Join(g.Emails, ";"),
				g.ProjectID,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// csvCell stringifies one field value for CSV output.
func csvCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers decode to float64; keep integers clean.
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(contract.DateTimeFormat)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}
