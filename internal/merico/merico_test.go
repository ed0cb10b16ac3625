package merico

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leoyyy3/mericoComment/internal/contract"
)

func testConfig(apiURL, duplicateURL string) *contract.Config {
	return &contract.Config{
		MericoAPIURL:       apiURL,
		MericoDuplicateURL: duplicateURL,
		MericoToken:        "tok",
		FrequentAuthors:    []string{"dev@example.com"},
		Timeout:            5 * time.Second,
		RetryTimes:         1,
		RetryDelay:         0,
		BatchDelay:         time.Millisecond,
		PageSize:           100,
	}
}

func TestFetchListingPayloadShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"list":[]}}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL, ""))
	_, err := c.FetchListing(context.Background(), "repo-1")
	require.NoError(t, err)

	params, ok := got["params"].([]any)
	require.True(t, ok)
	require.Len(t, params, 2)
	assert.Equal(t, "repo-1", params[0])

	filter, ok := params[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), filter["page"])
	assert.Equal(t, float64(100), filter["pageSize"])
	assert.Equal(t, "cyclomatic", filter["sortField"])
	assert.Equal(t, "descend", filter["sortOrder"])
	assert.Equal(t, []any{"dev@example.com"}, filter["frequentAuthors"])
	assert.Equal(t, false, filter["isDocCovered"])

	cyclo, ok := filter["cyclomatic"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(0), cyclo["min"])
	assert.Nil(t, cyclo["max"])
}

func TestFetchDuplicatesPayloadShape(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"total":2,"data":[{"groupName":"parse","numFunctions":3},{"groupName":"walk","numFunctions":2}]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig("", srv.URL))
	resp, err := c.FetchDuplicates(context.Background(), "repo-1")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "parse", resp.Data[0].GroupName)
	assert.Equal(t, 3, resp.Data[0].NumFunctions)

	assert.Equal(t, "repo-1", got["id"])
	sort, ok := got["sort"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "numFunctions", sort["field"])
	assert.Equal(t, "desc", sort["direction"])
	filter, ok := got["filter"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"dev@example.com"}, filter["emails"])
}

func TestFetchAllContinuesPastFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		params := got["params"].([]any)
		if params[0] == "bad" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"severity":"high"}]}`))
	}))
	defer srv.Close()

	var sleeps int
	c := NewClient(testConfig(srv.URL, ""), WithSleep(func(time.Duration) { sleeps++ }))
	results := c.FetchAll(context.Background(), []string{"a", "bad", "b"})
	require.Len(t, results, 3)

	assert.Equal(t, "a", results[0].ProjectID)
	assert.True(t, results[0].OK())
	assert.Equal(t, "bad", results[1].ProjectID)
	assert.False(t, results[1].OK())
	assert.NotEmpty(t, results[1].Err)
	assert.True(t, results[2].OK())

	// delay between projects, not after the last
	assert.Equal(t, 2, sleeps)
}

func TestLoadRepoIDs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repoIds.json")
	require.NoError(t, os.WriteFile(path, []byte(`["alpha","beta"]`), 0o644))

	ids, err := LoadRepoIDs(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, ids)

	_, err = LoadRepoIDs(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadRepoNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "repoId_repoName_list.json")
	raw := `[{"repoId":"alpha","repoName":"Alpha Service"},{"repoId":"beta","repoName":"Beta Portal"},{"repoId":"","repoName":"orphan"}]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	names, err := LoadRepoNames(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"alpha": "Alpha Service", "beta": "Beta Portal"}, names)

	_, err = LoadRepoNames(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"not":"a list"}`), 0o644))
	_, err = LoadRepoNames(path)
	assert.Error(t, err)
}
