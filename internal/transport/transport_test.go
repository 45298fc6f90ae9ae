package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/releasemap/pkg/errors"
)

func TestClientSetsHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := New(WithUserAgent("releasemap-test"))
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "releasemap-test", got.Get("User-Agent"))
	assert.Equal(t, "no-cache", got.Get("Cache-Control"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := New(WithTimeout(50 * time.Millisecond))
	assert.Equal(t, 50*time.Millisecond, c.Timeout())

	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsTimeout(err))
}

func TestGetInvalidURL(t *testing.T) {
	_, err := New().Get(context.Background(), "://bad")
	require.Error(t, err)
}

func TestDecodeResponse(t *testing.T) {
	newResp := func(status int, body string) *http.Response {
		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
	}

	t.Run("ok", func(t *testing.T) {
		var out struct {
			DownloadURL string `json:"downloadUrl"`
		}
		require.NoError(t, DecodeResponse(newResp(200, `{"downloadUrl":"https://x"}`), "download-api", &out))
		assert.Equal(t, "https://x", out.DownloadURL)
	})

	t.Run("non-2xx", func(t *testing.T) {
		err := DecodeResponse(newResp(503, "busy"), "download-api", &struct{}{})
		var apiErr *errors.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 503, apiErr.StatusCode)
		assert.Equal(t, "download-api", apiErr.Provider)
		assert.True(t, errors.IsProviderUnavailable(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		err := DecodeResponse(newResp(200, "<html>"), "download-api", &struct{}{})
		var parseErr *errors.ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, "json", parseErr.Format)
		assert.Equal(t, "malformed response body", parseErr.Message)
		assert.Error(t, parseErr.Err)
	})

	t.Run("rate limited", func(t *testing.T) {
		resp := newResp(http.StatusTooManyRequests, "slow down")
		resp.Request = httptest.NewRequest(http.MethodGet, "https://downloads.example.com/api?platform=linux-x64", nil)
		err := DecodeResponse(resp, "download-api", &struct{}{})
		assert.True(t, errors.IsRateLimited(err))
		assert.False(t, errors.IsProviderUnavailable(err))

		var apiErr *errors.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "slow down", apiErr.Message)
		assert.Equal(t, "https://downloads.example.com/api?platform=linux-x64", apiErr.Endpoint)
	})
}
