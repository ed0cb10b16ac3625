package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leoyyy3/mericoComment/schema"
)

type stubFetcher struct {
	commits []schema.CommitRecord
	err     error
}

func (s *stubFetcher) FetchAllCommits(ctx context.Context, entityID, workspaceID string) ([]schema.CommitRecord, error) {
	return s.commits, s.err
}

type stubCompleter struct {
	gotSystem string
	gotUser   string
	reply     string
	err       error
	calls     int
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	s.gotSystem = systemPrompt
	s.gotUser = userPrompt
	return s.reply, s.err
}

func sampleCommits() []schema.CommitRecord {
	return []schema.CommitRecord{
		{Message: "fix login bug", UserName: "alice", CommitTime: "2026-08-24 10:00"},
		{Message: "add csv export", UserName: "bob", CommitTime: "2026-08-25 11:00"},
		{Message: "tweak login copy", UserName: "alice", CommitTime: "2026-08-26 09:00"},
	}
}

func TestGroupCommitsByAuthor(t *testing.T) {
	order, grouped := GroupCommitsByAuthor(sampleCommits())
	assert.Equal(t, []string{"alice", "bob"}, order)
	assert.Len(t, grouped["alice"], 2)
	assert.Len(t, grouped["bob"], 1)
}

func TestGroupCommitsByAuthorUnknown(t *testing.T) {
	order, grouped := GroupCommitsByAuthor([]schema.CommitRecord{{Message: "m"}})
	assert.Equal(t, []string{schema.UnknownKey}, order)
	assert.Len(t, grouped[schema.UnknownKey], 1)
}

func TestBuildWeeklyPrompt(t *testing.T) {
	prompt := BuildWeeklyPrompt(sampleCommits())
	assert.Contains(t, prompt, "### alice (2 commits)")
	assert.Contains(t, prompt, "### bob (1 commits)")
	assert.Contains(t, prompt, "fix login bug")
	assert.Contains(t, prompt, "# Weekly Summary")

	// stable across runs
	assert.Equal(t, prompt, BuildWeeklyPrompt(sampleCommits()))
}

func TestGenerateUsesDefaultPrompt(t *testing.T) {
	completer := &stubCompleter{reply: "# Weekly Summary\nall good"}
	g := NewWeeklyGenerator(&stubFetcher{commits: sampleCommits()}, completer, t.TempDir())

	report, err := g.Generate(context.Background(), "e1", "w1", "")
	require.NoError(t, err)
	assert.Equal(t, "# Weekly Summary\nall good", report)
	assert.Contains(t, completer.gotUser, "### alice")
	assert.NotEmpty(t, completer.gotSystem)
}

func TestGenerateCustomPromptOverrides(t *testing.T) {
	completer := &stubCompleter{reply: "ok"}
	g := NewWeeklyGenerator(&stubFetcher{commits: sampleCommits()}, completer, t.TempDir())

	_, err := g.Generate(context.Background(), "e1", "w1", "just say ok")
	require.NoError(t, err)
	assert.Equal(t, "just say ok", completer.gotUser)
}

func TestGenerateNoCommitsSkipsLLM(t *testing.T) {
	completer := &stubCompleter{}
	g := NewWeeklyGenerator(&stubFetcher{}, completer, t.TempDir())

	report, err := g.Generate(context.Background(), "e1", "w1", "")
	require.NoError(t, err)
	assert.Equal(t, NoCommitsMessage, report)
	assert.Zero(t, completer.calls)
}

func TestGenerateLLMErrorPropagates(t *testing.T) {
	completer := &stubCompleter{err: errors.New("quota exceeded")}
	g := NewWeeklyGenerator(&stubFetcher{commits: sampleCommits()}, completer, t.TempDir())

	_, err := g.Generate(context.Background(), "e1", "w1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerateAndSave(t *testing.T) {
	dir := t.TempDir()
	completer := &stubCompleter{reply: "report body"}
	g := NewWeeklyGenerator(&stubFetcher{commits: sampleCommits()}, completer, dir)

	report, path, err := g.GenerateAndSave(context.Background(), "entity-7", "w1", "")
	require.NoError(t, err)
	assert.Equal(t, "report body", report)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "weekly_report_entity-7_"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "report body", string(content))

	files, err := g.ListReports()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Base(path), files[0].Name)
}

func TestListReportsMissingDir(t *testing.T) {
	g := NewWeeklyGenerator(&stubFetcher{}, &stubCompleter{}, filepath.Join(t.TempDir(), "nope"))
	files, err := g.ListReports()
	require.NoError(t, err)
	assert.Empty(t, files)
}
