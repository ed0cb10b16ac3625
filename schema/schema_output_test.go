package schema_test

import (
	"testing"
	"time"

	"github.com/leoyyy3/mericoComment/schema"
	"github.com/stretchr/testify/assert"
)

func TestRankEntries(t *testing.T) {
	hist := map[string]int{"b": 3, "a": 3, "c": 10, "d": 1}

	entries := schema.RankEntries(hist, 0)
	assert.Equal(t, []schema.RankedEntry{
		{Rank: 1, Key: "c", Count: 10},
		{Rank: 2, Key: "a", Count: 3}, // ties break by key
		{Rank: 3, Key: "b", Count: 3},
		{Rank: 4, Key: "d", Count: 1},
	}, entries)
}

func TestRankEntriesLimit(t *testing.T) {
	hist := map[string]int{"a": 1, "b": 2, "c": 3}

	entries := schema.RankEntries(hist, 2)
	assert.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].Key)
	assert.Equal(t, "b", entries[1].Key)
}

func TestRankEntriesEmpty(t *testing.T) {
	assert.Empty(t, schema.RankEntries(nil, 5))
}

func TestSumCounts(t *testing.T) {
	assert.Equal(t, 6, schema.SumCounts(map[string]int{"a": 1, "b": 2, "c": 3}))
	assert.Equal(t, 0, schema.SumCounts(nil))
}

func TestSortReportFiles(t *testing.T) {
	now := time.Now()
	files := []schema.ReportFile{
		{Name: "old.json", Modified: now.Add(-time.Hour)},
		{Name: "b.json", Modified: now},
		{Name: "a.json", Modified: now},
	}

	schema.SortReportFiles(files)

	assert.Equal(t, "a.json", files[0].Name) // name tiebreak on equal times
	assert.Equal(t, "b.json", files[1].Name)
	assert.Equal(t, "old.json", files[2].Name)
}

func TestFieldUnion(t *testing.T) {
	records := []schema.FunctionRecord{
		{"severity": "high", "repo_id": "a"},
		{"type": "long_function", "repo_id": "b"},
	}

	assert.Equal(t, []string{"repo_id", "severity", "type"}, schema.FieldUnion(records))
	assert.Empty(t, schema.FieldUnion(nil))
}
