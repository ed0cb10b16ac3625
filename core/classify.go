// Package core holds the aggregation passes and the services built on
// them: classification of flagged-function listings, duplicate-group
// statistics, analysis orchestration and weekly report generation.
package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/leoyyy3/mericoComment/schema"
)

// listingBody models the two shapes the listing API is known to return:
// either the record list directly under "data", or nested one level
// deeper under "data.list". Anything else decodes to an empty list.
type listingBody struct {
	Data json.RawMessage `json:"data"`
}

type listingNested struct {
	List []schema.FunctionRecord `json:"list"`
}

// decodePayload extracts the record list from a raw listing payload,
// tolerating both known response shapes. An unrecognized shape yields
// an empty list, never an error: a schema drift upstream should degrade
// the report, not crash the run.
func decodePayload(payload json.RawMessage) []schema.FunctionRecord {
	if len(payload) == 0 {
		return nil
	}

	var body listingBody
	if err := json.Unmarshal(payload, &body); err != nil || len(body.Data) == 0 {
		return nil
	}

	// Shape A: data is the list itself.
	var flat []schema.FunctionRecord
	if err := json.Unmarshal(body.Data, &flat); err == nil {
		return flat
	}

	// Shape B: data.list holds the list.
	var nested listingNested
	if err := json.Unmarshal(body.Data, &nested); err == nil {
		return nested.List
	}

	return nil
}

// Classify reduces a list of fetch results into one aggregate report in
// a single pass. Failed fetches are carried into Errors untouched;
// every record from a successful fetch is stamped with its project id
// and tallied once into each histogram.
func Classify(results []schema.FetchResult) *schema.AggregateReport {
	report := &schema.AggregateReport{
		BySeverity:  make(map[string]int),
		ByType:      make(map[string]int),
		ByRule:      make(map[string]int),
		AllRecords:  make([]schema.FunctionRecord, 0),
		Errors:      make([]schema.ProjectError, 0),
		GeneratedAt: time.Now(),
	}
	report.Summary.TotalProjects = len(results)

	for _, res := range results {
		if !res.OK() {
			report.Summary.FailedProjects++
			report.Errors = append(report.Errors, schema.ProjectError{
				ProjectID: res.ProjectID,
				Err:       res.Err,
				Timestamp: res.Timestamp,
			})
			continue
		}

		report.Summary.SuccessfulProjects++
		for _, rec := range decodePayload(res.Payload) {
			if rec == nil {
				rec = schema.FunctionRecord{}
			}
			rec[schema.FieldProjectID] = res.ProjectID
			report.AllRecords = append(report.AllRecords, rec)
			report.BySeverity[rec.Severity()]++
			report.ByType[rec.Type()]++
			report.ByRule[rec.Rule()]++
			report.Summary.TotalFunctionCount++
		}
	}

	return report
}

// AggregateDuplicates reduces duplicate-group fetch results into a
// DuplicateReport. Group counts are weighted by group size so the
// language and complexity histograms count functions, not clusters.
func AggregateDuplicates(results []schema.FetchResult, topN int) *schema.DuplicateReport {
	report := &schema.DuplicateReport{
		ByLanguage:       make(map[string]int),
		ByComplexity:     make(map[string]int),
		TopGroups:        make([]schema.DuplicateGroup, 0),
		ProjectSummaries: make([]schema.DuplicateProjectSummary, 0),
		Errors:           make([]schema.ProjectError, 0),
		GeneratedAt:      time.Now(),
	}
	report.Summary.TotalProjects = len(results)

	var allGroups []schema.DuplicateGroup
	for _, res := range results {
		if !res.OK() {
			report.Summary.FailedProjects++
			report.Errors = append(report.Errors, schema.ProjectError{
				ProjectID: res.ProjectID,
				Err:       res.Err,
				Timestamp: res.Timestamp,
			})
			continue
		}
		report.Summary.SuccessfulProjects++

		var body struct {
			Total int                     `json:"total"`
			Data  []schema.DuplicateGroup `json:"data"`
		}
		if err := json.Unmarshal(res.Payload, &body); err != nil {
			continue
		}

		summary := schema.DuplicateProjectSummary{ProjectID: res.ProjectID}
		for _, group := range body.Data {
			group.ProjectID = res.ProjectID
			allGroups = append(allGroups, group)

			report.TotalGroups++
			report.TotalFunctions += group.NumFunctions
			summary.TotalGroups++
			summary.TotalFunctions += group.NumFunctions

			lang := group.Language
			if lang == "" {
				lang = schema.UnknownKey
			}
			report.ByLanguage[lang] += group.NumFunctions
			report.ByComplexity[complexityBucket(group.MaxComplexity)]++
		}
		report.ProjectSummaries = append(report.ProjectSummaries, summary)
	}

	report.Summary.TotalFunctionCount = report.TotalFunctions

	// Largest clusters first; name breaks ties so output is stable.
	sort.SliceStable(allGroups, func(i, j int) bool {
		if allGroups[i].NumFunctions != allGroups[j].NumFunctions {
			return allGroups[i].NumFunctions > allGroups[j].NumFunctions
		}
		return allGroups[i].GroupName < allGroups[j].GroupName
	})
	if topN <= 0 || topN > len(allGroups) {
		topN = len(allGroups)
	}
	report.TopGroups = append(report.TopGroups, allGroups[:topN]...)

	return report
}

// complexityBucket maps a cyclomatic complexity value to a histogram bucket.
func complexityBucket(complexity int) string {
	switch {
	case complexity <= 5:
		return "1-5"
	case complexity <= 10:
		return "6-10"
	case complexity <= 20:
		return "11-20"
	default:
		return "20+"
	}
}

// LoadResultsFile reads a previously saved raw results snapshot for
// offline re-analysis.
func LoadResultsFile(raw []byte) ([]schema.FetchResult, error) {
	var results []schema.FetchResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("parse results file: %w", err)
	}
	return results, nil
}

// LoadReportFile accepts either a raw results snapshot (a JSON array),
// which is classified on the fly, or an already classified report (a
// JSON object) that is rendered as-is.
func LoadReportFile(raw []byte) (*schema.AggregateReport, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		results, err := LoadResultsFile(raw)
		if err != nil {
			return nil, err
		}
		return Classify(results), nil
	}

	var report schema.AggregateReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("parse report file: %w", err)
	}
	return &report, nil
}
