// Package outwriter renders aggregate reports to console, CSV, JSON,
// HTML and parquet artifacts.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/term"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/schema"
)

// utf8BOM marks CSV exports so spreadsheet tools pick UTF-8.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// OutWriter provides a unified interface for all report output. A
// rendering failure is a soft failure for the pipeline: callers log it
// and move on.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAggregate renders an aggregate report to the console and, when a
// file mode is configured, writes the matching artifact under the
// output directory. It returns the paths of files written. Quiet mode
// skips the console: surfaces that own stdout for a protocol (MCP over
// stdio) must not see rendering there.
func (ow *OutWriter) WriteAggregate(report *schema.AggregateReport, cfg *contract.Config) ([]string, error) {
	if !cfg.Quiet {
		if err := writeAggregateConsole(os.Stdout, report, cfg); err != nil {
			return nil, err
		}
	}
	return writeAggregateArtifacts(report, cfg)
}

// WriteDuplicate renders a duplicate report to the console plus any
// configured file artifacts. Quiet mode skips the console.
func (ow *OutWriter) WriteDuplicate(report *schema.DuplicateReport, cfg *contract.Config) ([]string, error) {
	if !cfg.Quiet {
		if err := writeDuplicateConsole(os.Stdout, report, cfg); err != nil {
			return nil, err
		}
	}
	return writeDuplicateArtifacts(report, cfg)
}

// SaveRawResults snapshots the raw fetch results as a timestamped JSON
// file and returns its path.
func (ow *OutWriter) SaveRawResults(results []schema.FetchResult, cfg *contract.Config, prefix string) (string, error) {
	return writeTimestampedJSON(cfg, prefix+"_raw", results)
}

// SaveClassified snapshots a classified report as a timestamped JSON
// file and returns its path.
func (ow *OutWriter) SaveClassified(report any, cfg *contract.Config, prefix string) (string, error) {
	return writeTimestampedJSON(cfg, prefix+"_classified", report)
}

func writeTimestampedJSON(cfg *contract.Config, prefix string, data any) (string, error) {
	name := fmt.Sprintf("%s_%s.json", prefix, time.Now().Format(contract.TimestampFormat))
	path := filepath.Join(cfg.OutputDir, name)
	err := writeWithFile(path, func(w io.Writer) error {
		return writeJSON(w, data, cfg.PrettyPrint)
	}, "Wrote JSON")
	if err != nil {
		return "", err
	}
	return path, nil
}

// writeWithFile opens the target, runs the writer and cleans up. An
// empty path means stdout.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON encodes data with optional indentation.
func writeJSON(w io.Writer, data any, pretty bool) error {
	encoder := json.NewEncoder(w)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader emits the UTF-8 BOM, the header row and the data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	return writeRows(csvWriter)
}

// terminalWidth resolves the console width: explicit override first,
// then detection, then a conservative default for CI.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return 80
	}
	return detected
}
