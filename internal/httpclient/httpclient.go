// Package httpclient wraps outbound HTTP calls with timeout, fixed-delay
// retry and static authentication for the flaky upstream APIs.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leoyyy3/mericoComment/internal/contract"
)

// Config holds the client settings. Zero values fall back to the
// package defaults below.
type Config struct {
	Timeout    time.Duration
	RetryTimes int
	RetryDelay time.Duration
	Headers    map[string]string
}

// Defaults applied when Config fields are unset.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultRetryTimes = 3
	DefaultRetryDelay = 2 * time.Second
)

// TransportError reports a request that failed after all retry attempts.
// Status is zero for network-level failures.
type TransportError struct {
	Method   string
	URL      string
	Attempts int
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s failed after %d attempts: status %d: %v", e.Method, e.URL, e.Attempts, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s failed after %d attempts: %v", e.Method, e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client issues HTTP requests with bounded, constant-delay retry.
// Authentication is attached once at construction and reused for all
// requests on the instance.
type Client struct {
	cfg    Config
	doer   contract.HTTPDoer
	header http.Header
}

// New creates a client with the given config.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryTimes <= 0 {
		cfg.RetryTimes = DefaultRetryTimes
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	for k, v := range cfg.Headers {
		header.Set(k, v)
	}

	return &Client{
		cfg:    cfg,
		doer:   &http.Client{Timeout: cfg.Timeout},
		header: header,
	}
}

// WithDoer replaces the underlying transport. Used by tests.
func (c *Client) WithDoer(doer contract.HTTPDoer) *Client {
	c.doer = doer
	return c
}

// SetAuthToken attaches a static bearer token to all requests.
func (c *Client) SetAuthToken(token string) {
	c.header.Set("Authorization", "Bearer "+token)
}

// SetCookies attaches a static cookie set to all requests.
func (c *Client) SetCookies(cookies map[string]string) {
	pairs := make([]string, 0, len(cookies))
	for k, v := range cookies {
		pairs = append(pairs, k+"="+v)
	}
	c.header.Set("Cookie", strings.Join(pairs, "; "))
}

// Do issues the request, retrying on transport errors and non-2xx
// responses up to RetryTimes total attempts with a constant RetryDelay
// between attempts. The last observed failure is returned wrapped in a
// TransportError; the caller decides whether its unit of work is lost.
func (c *Client) Do(ctx context.Context, method, rawURL string, body []byte) ([]byte, error) {
	var lastErr error
	lastStatus := 0

	for attempt := 1; attempt <= c.cfg.RetryTimes; attempt++ {
		respBody, status, err := c.attempt(ctx, method, rawURL, body)
		if err == nil {
			contract.Info("%s %s succeeded (attempt %d/%d)", method, rawURL, attempt, c.cfg.RetryTimes)
			return respBody, nil
		}

		lastErr = err
		lastStatus = status
		contract.Warning("%s %s failed (attempt %d/%d): %v", method, rawURL, attempt, c.cfg.RetryTimes, err)

		if attempt < c.cfg.RetryTimes {
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return nil, &TransportError{Method: method, URL: rawURL, Attempts: attempt, Err: ctx.Err()}
			}
		}
	}

	return nil, &TransportError{Method: method, URL: rawURL, Attempts: c.cfg.RetryTimes, Status: lastStatus, Err: lastErr}
}

// attempt performs a single request. Non-2xx statuses are errors so the
// retry loop treats them like transport failures.
func (c *Client) attempt(ctx context.Context, method, rawURL string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, 0, err
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet(respBody))
	}

	return respBody, resp.StatusCode, nil
}

// GetJSON issues a GET with query parameters and decodes the JSON response.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}
	body, err := c.Do(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// PostJSON issues a POST with a JSON payload and decodes the JSON response.
func (c *Client) PostJSON(ctx context.Context, rawURL string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request payload: %w", err)
	}
	respBody, err := c.Do(ctx, http.MethodPost, rawURL, body)
	if err != nil {
		return err
	}
	return json.Unmarshal(respBody, out)
}

// snippet truncates a response body for error messages.
func snippet(body []byte) string {
	const limit = 200
	s := string(body)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
