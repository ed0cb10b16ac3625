package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := New(Config{RetryTimes: 3, RetryDelay: 0})
	body, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{RetryTimes: 2, RetryDelay: 0})
	_, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 2, terr.Attempts)
	assert.Equal(t, http.StatusBadGateway, terr.Status)
}

func TestDoNoRetryOnSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(Config{RetryTimes: 5, RetryDelay: 0})
	_, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPostJSONSendsPayloadAndAuth(t *testing.T) {
	var gotAuth, gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(buf)
		gotBody = string(buf)
		_, _ = w.Write([]byte(`{"data":[1,2,3]}`))
	}))
	defer srv.Close()

	c := New(Config{RetryTimes: 1, RetryDelay: 0})
	c.SetAuthToken("secret-token")

	var out struct {
		Data []int `json:"data"`
	}
	err := c.PostJSON(context.Background(), srv.URL, map[string]any{"id": 42}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"id":42}`, gotBody)
	assert.Equal(t, []int{1, 2, 3}, out.Data)
}

func TestGetJSONEncodesParams(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"total":7}`))
	}))
	defer srv.Close()

	c := New(Config{RetryTimes: 1, RetryDelay: 0})
	params := url.Values{}
	params.Set("page", "2")
	params.Set("per_page", "100")

	var out struct {
		Total int `json:"total"`
	}
	err := c.GetJSON(context.Background(), srv.URL, params, &out)
	require.NoError(t, err)
	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "100", gotQuery.Get("per_page"))
	assert.Equal(t, 7, out.Total)
}

func TestSetCookies(t *testing.T) {
	var gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(Config{RetryTimes: 1, RetryDelay: 0})
	c.SetCookies(map[string]string{"session": "abc"})
	_, err := c.Do(context.Background(), http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	assert.Contains(t, gotCookie, "session=abc")
}
