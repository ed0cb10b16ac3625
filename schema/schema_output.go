package schema

import "sort"

// RankedEntry is one row of a ranked histogram view.
type RankedEntry struct {
	Rank  int    `json:"rank"`
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// RankEntries converts a histogram into a descending ranked list.
// Ties are broken by key so repeated runs over the same data produce
// identical output. A limit <= 0 returns all entries.
func RankEntries(hist map[string]int, limit int) []RankedEntry {
	keys := make([]string, 0, len(hist))
	for k := range hist {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]RankedEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, RankedEntry{Key: k, Count: hist[k]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// SumCounts returns the total of all histogram values.
func SumCounts(hist map[string]int) int {
	total := 0
	for _, v := range hist {
		total += v
	}
	return total
}

// SortReportFiles orders report files newest first, name as tiebreak.
func SortReportFiles(files []ReportFile) {
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].Modified.Equal(files[j].Modified) {
			return files[i].Modified.After(files[j].Modified)
		}
		return files[i].Name < files[j].Name
	})
}

// FieldUnion returns the sorted union of field names across records.
// This is the CSV column set.
func FieldUnion(records []FunctionRecord) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		for k := range rec {
			seen[k] = true
		}
	}
	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
