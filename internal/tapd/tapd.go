// Package tapd fetches commit history from the TAPD devops API.
package tapd

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/internal/httpclient"
	"github.com/leoyyy3/mericoComment/schema"
)

// ApplicationError is a non-zero status code inside the TAPD response
// envelope. The HTTP leg succeeded; the API itself rejected the call.
type ApplicationError struct {
	Code    string
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("tapd api error (code %s): %s", e.Code, e.Message)
}

// commitEnvelope is the TAPD response wrapper. Code is a string "0" on
// success.
type commitEnvelope struct {
	Meta struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"meta"`
	Data struct {
		Commits    []schema.CommitRecord `json:"commits"`
		TotalCount int                   `json:"total_count"`
	} `json:"data"`
}

// Client fetches related commits for a TAPD entity.
type Client struct {
	http       *httpclient.Client
	baseURL    string
	entityType string
	scmType    string
	perPage    int
}

// NewClient builds a TAPD client from validated config. Authentication
// is cookie-based.
func NewClient(cfg *contract.Config) *Client {
	hc := httpclient.New(httpclient.Config{
		Timeout:    cfg.Timeout,
		RetryTimes: cfg.RetryTimes,
		RetryDelay: cfg.RetryDelay,
	})
	if len(cfg.TAPDCookies) > 0 {
		hc.SetCookies(cfg.TAPDCookies)
	}

	return &Client{
		http:       hc,
		baseURL:    cfg.TAPDBaseURL,
		entityType: contract.DefaultTAPDEntityType,
		scmType:    contract.DefaultTAPDScmType,
		perPage:    cfg.PageSize,
	}
}

// FetchCommits retrieves one page of commits for the entity.
func (c *Client) FetchCommits(ctx context.Context, entityID, workspaceID string, page int) ([]schema.CommitRecord, int, error) {
	params := url.Values{}
	params.Set("workspace_id", workspaceID)
	params.Set("entity_id", entityID)
	params.Set("entity_type", c.entityType)
	params.Set("related_id", "-1")
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(c.perPage))
	params.Set("scm_type", c.scmType)

	var envelope commitEnvelope
	if err := c.http.GetJSON(ctx, c.baseURL+"/get_related_commits", params, &envelope); err != nil {
		return nil, 0, err
	}
	if envelope.Meta.Code != "0" {
		return nil, 0, &ApplicationError{Code: envelope.Meta.Code, Message: envelope.Meta.Message}
	}
	return envelope.Data.Commits, envelope.Data.TotalCount, nil
}

// FetchAllCommits pages through the commit list until the collected
// count reaches the server-reported total or a page comes back empty.
func (c *Client) FetchAllCommits(ctx context.Context, entityID, workspaceID string) ([]schema.CommitRecord, error) {
	var all []schema.CommitRecord
	for page := 1; ; page++ {
		commits, total, err := c.FetchCommits(ctx, entityID, workspaceID, page)
		if err != nil {
			return nil, err
		}
		if len(commits) == 0 {
			break
		}
		all = append(all, commits...)
		if len(all) >= total {
			break
		}
	}
	contract.Info("fetched %d commits for entity %s", len(all), entityID)
	return all, nil
}
