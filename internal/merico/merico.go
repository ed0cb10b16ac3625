// Package merico talks to the two Merico quality endpoints: the
// uncommented-function listing API and the duplicate-group API.
package merico

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/internal/httpclient"
	"github.com/leoyyy3/mericoComment/schema"
)

// listingFilter is the second element of the listing payload's params
// array. The upstream expects these exact field names.
type listingFilter struct {
	Page            int           `json:"page"`
	PageSize        int           `json:"pageSize"`
	SortField       string        `json:"sortField"`
	SortOrder       string        `json:"sortOrder"`
	Location        string        `json:"location"`
	FrequentAuthors []string      `json:"frequentAuthors"`
	Cyclomatic      cyclomaticCap `json:"cyclomatic"`
	IsDocCovered    bool          `json:"isDocCovered"`
}

type cyclomaticCap struct {
	Min int  `json:"min"`
	Max *int `json:"max"`
}

// listingPayload wraps a repo id and its filter in the positional
// params array the listing API requires.
type listingPayload struct {
	Params [2]any `json:"params"`
}

// duplicatePayload is the request body for the duplicate-group API.
type duplicatePayload struct {
	ID       string          `json:"id"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
	Filter   duplicateFilter `json:"filter"`
	Sort     duplicateSort   `json:"sort"`
}

type duplicateFilter struct {
	Search string   `json:"search"`
	Emails []string `json:"emails"`
}

type duplicateSort struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// DuplicateResponse is the duplicate API's response envelope.
type DuplicateResponse struct {
	Total int                     `json:"total"`
	Data  []schema.DuplicateGroup `json:"data"`
}

// Client fetches listings from the Merico APIs one project at a time.
// Calls are deliberately sequential with a flat delay between projects
// so the upstream is never hammered.
type Client struct {
	http            *httpclient.Client
	apiURL          string
	duplicateURL    string
	frequentAuthors []string
	pageSize        int
	batchDelay      time.Duration
	sleep           func(time.Duration)
}

// Option configures a Client.
type Option func(*Client)

// WithSleep overrides the inter-project delay function. Used by tests.
func WithSleep(fn func(time.Duration)) Option {
	return func(c *Client) { c.sleep = fn }
}

// NewClient builds a Merico client from validated config.
func NewClient(cfg *contract.Config, opts ...Option) *Client {
	hc := httpclient.New(httpclient.Config{
		Timeout:    cfg.Timeout,
		RetryTimes: cfg.RetryTimes,
		RetryDelay: cfg.RetryDelay,
	})
	hc.SetAuthToken(cfg.MericoToken)

	c := &Client{
		http:            hc,
		apiURL:          cfg.MericoAPIURL,
		duplicateURL:    cfg.MericoDuplicateURL,
		frequentAuthors: cfg.FrequentAuthors,
		pageSize:        cfg.PageSize,
		batchDelay:      cfg.BatchDelay,
		sleep:           time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadRepoIDs reads the project identifier list from a JSON file
// containing a flat array of strings.
func LoadRepoIDs(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read repo ids file: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("parse repo ids file %s: %w", path, err)
	}
	return ids, nil
}

// LoadRepoNames reads the project display-name mapping: a JSON array of
// {repoId, repoName} objects. Reports stay readable without it, so
// callers treat a missing file as an empty mapping.
func LoadRepoNames(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read repo names file: %w", err)
	}
	var entries []struct {
		RepoID   string `json:"repoId"`
		RepoName string `json:"repoName"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse repo names file %s: %w", path, err)
	}
	names := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.RepoID != "" {
			names[e.RepoID] = e.RepoName
		}
	}
	return names, nil
}

// FetchListing requests one page of flagged functions for a single project.
func (c *Client) FetchListing(ctx context.Context, repoID string) (json.RawMessage, error) {
	payload := listingPayload{
		Params: [2]any{
			repoID,
			listingFilter{
				Page:            1,
				PageSize:        c.pageSize,
				SortField:       "cyclomatic",
				SortOrder:       "descend",
				FrequentAuthors: c.frequentAuthors,
				Cyclomatic:      cyclomaticCap{Min: 0, Max: nil},
				IsDocCovered:    false,
			},
		},
	}

	var raw json.RawMessage
	if err := c.http.PostJSON(ctx, c.apiURL, payload, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// FetchDuplicates requests the duplicate function groups for one
// project, sorted by group size.
func (c *Client) FetchDuplicates(ctx context.Context, repoID string) (*DuplicateResponse, error) {
	payload := duplicatePayload{
		ID:       repoID,
		Page:     1,
		PageSize: c.pageSize,
		Filter:   duplicateFilter{Search: "", Emails: c.frequentAuthors},
		Sort:     duplicateSort{Field: "numFunctions", Direction: "desc"},
	}

	var resp DuplicateResponse
	if err := c.http.PostJSON(ctx, c.duplicateURL, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchAll walks the project list sequentially, collecting one
// FetchResult per project in input order. A project whose fetch fails
// (after the HTTP client's own retries) gets its error recorded and the
// batch continues.
func (c *Client) FetchAll(ctx context.Context, repoIDs []string) []schema.FetchResult {
	return c.fetchSequential(ctx, repoIDs, func(ctx context.Context, id string) (json.RawMessage, error) {
		return c.FetchListing(ctx, id)
	})
}

// FetchAllDuplicates is FetchAll for the duplicate-group endpoint.
func (c *Client) FetchAllDuplicates(ctx context.Context, repoIDs []string) []schema.FetchResult {
	return c.fetchSequential(ctx, repoIDs, func(ctx context.Context, id string) (json.RawMessage, error) {
		resp, err := c.FetchDuplicates(ctx, id)
		if err != nil {
			return nil, err
		}
		return json.Marshal(resp)
	})
}

func (c *Client) fetchSequential(ctx context.Context, repoIDs []string, fetch func(context.Context, string) (json.RawMessage, error)) []schema.FetchResult {
	results := make([]schema.FetchResult, 0, len(repoIDs))
	for i, id := range repoIDs {
		contract.Info("fetching project %s (%d/%d)", id, i+1, len(repoIDs))

		res := schema.FetchResult{ProjectID: id, Timestamp: time.Now()}
		payload, err := fetch(ctx, id)
		if err != nil {
			contract.Warning("project %s failed: %v", id, err)
			res.Err = err.Error()
		} else {
			res.Payload = payload
		}
		results = append(results, res)

		// Throttle between projects, not after the last one.
		if i < len(repoIDs)-1 && c.batchDelay > 0 {
			c.sleep(c.batchDelay)
		}
	}
	return results
}
