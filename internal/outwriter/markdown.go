package outwriter

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/schema"
)

// SaveProjectDetail writes the per-project, per-file Markdown breakdown
// of a flagged-function report and returns its path.
func (ow *OutWriter) SaveProjectDetail(report *schema.AggregateReport, cfg *contract.Config) (string, error) {
	name := fmt.Sprintf("uncommented_detail_%s.md", report.GeneratedAt.Format(contract.TimestampFormat))
	path := filepath.Join(cfg.OutputDir, name)
	err := writeWithFile(path, func(w io.Writer) error {
		return WriteProjectDetail(w, report)
	}, "Wrote Markdown")
	if err != nil {
		return "", err
	}
	return path, nil
}

// WriteProjectDetail renders every flagged function grouped by project
// and file as a Markdown document, for review outside the terminal.
func WriteProjectDetail(w io.Writer, report *schema.AggregateReport) error {
	byProject := make(map[string]map[string][]schema.FunctionRecord)
	for _, rec := range report.AllRecords {
		id := rec.ProjectID()
		if byProject[id] == nil {
			byProject[id] = make(map[string][]schema.FunctionRecord)
		}
		file := recordFilePath(rec)
		byProject[id][file] = append(byProject[id][file], rec)
	}

	totalFiles := 0
	for _, files := range byProject {
		totalFiles += len(files)
	}

	fmt.Fprintln(w, "# Uncommented Function Detail")
	fmt.Fprintf(w, "\nGenerated: %s\n", report.GeneratedAt.Format(contract.DateTimeFormat))
	fmt.Fprintln(w, "\n## Overview")
	fmt.Fprintf(w, "\n- Projects: %d\n- Files: %d\n- Functions: %d\n",
		len(byProject), totalFiles, len(report.AllRecords))

	projects := make([]string, 0, len(byProject))
	for id := range byProject {
		projects = append(projects, id)
	}
	sort.Strings(projects)

	for _, id := range projects {
		files := byProject[id]
		functionCount := 0
		for _, recs := range files {
			functionCount += len(recs)
		}

		fmt.Fprintf(w, "\n## Project: %s\n\n", report.ProjectLabel(id))
		fmt.Fprintf(w, "- ID: `%s`\n- Functions: %d across %d files\n", id, functionCount, len(files))

		paths := make([]string, 0, len(files))
		for path := range files {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		for _, path := range paths {
			fmt.Fprintf(w, "\n### %s\n", path)
			for i, rec := range files[path] {
				writeFunctionDetail(w, i+1, rec)
			}
		}
	}
	return nil
}

func writeFunctionDetail(w io.Writer, rank int, rec schema.FunctionRecord) {
	name := rec.StringField("functionName", rec.StringField("name", "(anonymous)"))
	fmt.Fprintf(w, "\n#### %d. %s%s\n\n", rank, name, rec.StringField("params", ""))

	if start, ok := numField(rec, "startLine", "start_line"); ok {
		if end, ok := numField(rec, "endLine", "end_line"); ok {
			fmt.Fprintf(w, "- Location: lines %d-%d\n", start, end)
		} else {
			fmt.Fprintf(w, "- Location: line %d\n", start)
		}
	}
	if v := rec.StringField("language", ""); v != "" {
		fmt.Fprintf(w, "- Language: %s\n", v)
	}
	if n, ok := numField(rec, "cyclomatic"); ok {
		fmt.Fprintf(w, "- Cyclomatic: %d\n", n)
	}
	if author := rec.StringField("frequentAuthorName", ""); author != "" {
		if email := rec.StringField("frequentAuthorEmail", ""); email != "" {
			author = fmt.Sprintf("%s (%s)", author, email)
		}
		fmt.Fprintf(w, "- Author: %s\n", author)
	}
	if v := rec.StringField("latest_author_time", ""); v != "" {
		fmt.Fprintf(w, "- Last modified: %s\n", v)
	}
}

func recordFilePath(rec schema.FunctionRecord) string {
	if p := rec.StringField("filePath", rec.StringField("file_path", "")); p != "" {
		return p
	}
	return "(unknown file)"
}

// numField reads a numeric field under the first key that has one.
// JSON numbers arrive as float64.
func numField(rec schema.FunctionRecord, keys ...string) (int, bool) {
	for _, key := range keys {
		if f, ok := rec[key].(float64); ok {
			return int(f), true
		}
	}
	return 0, false
}
