package tapd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/schema"
)

func testConfig(baseURL string) *contract.Config {
	return &contract.Config{
		TAPDBaseURL: baseURL,
		TAPDCookies: map[string]string{"t_u": "abc"},
		Timeout:     5 * time.Second,
		RetryTimes:  1,
		PageSize:    100,
	}
}

func commitPage(start, count, total int) string {
	commits := make([]schema.CommitRecord, 0, count)
	for i := 0; i < count; i++ {
		commits = append(commits, schema.CommitRecord{
			Message:  fmt.Sprintf("commit %d", start+i),
			UserName: "dev",
			CommitID: strconv.Itoa(start + i),
		})
	}
	body, _ := json.Marshal(map[string]any{
		"meta": map[string]string{"code": "0", "message": "success"},
		"data": map[string]any{"commits": commits, "total_count": total},
	})
	return string(body)
}

func TestFetchAllCommitsPagination(t *testing.T) {
	var pages []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "ws-1", q.Get("workspace_id"))
		assert.Equal(t, "story-9", q.Get("entity_id"))
		assert.Equal(t, "story", q.Get("entity_type"))
		assert.Equal(t, "-1", q.Get("related_id"))
		assert.Equal(t, "gitlab", q.Get("scm_type"))

		page, _ := strconv.Atoi(q.Get("page"))
		pages = append(pages, page)
		switch page {
		case 1:
			fmt.Fprint(w, commitPage(0, 100, 150))
		case 2:
			fmt.Fprint(w, commitPage(100, 50, 150))
		default:
			fmt.Fprint(w, commitPage(0, 0, 150))
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	commits, err := c.FetchAllCommits(context.Background(), "story-9", "ws-1")
	require.NoError(t, err)
	assert.Len(t, commits, 150)
	assert.Equal(t, []int{1, 2}, pages)
}

func TestFetchAllCommitsStopsOnEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, commitPage(0, 0, 500))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	commits, err := c.FetchAllCommits(context.Background(), "e", "w")
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestFetchCommitsApplicationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"meta":{"code":"403","message":"no permission"},"data":{}}`)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, _, err := c.FetchCommits(context.Background(), "e", "w", 1)
	require.Error(t, err)

	var appErr *ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "403", appErr.Code)
	assert.Contains(t, appErr.Message, "no permission")
}
