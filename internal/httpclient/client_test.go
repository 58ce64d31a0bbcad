package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aleister1102/motosearch/internal/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-value", r.Header.Get("X-Test-Header"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithUserAgent("test-agent").Build()
	require.NoError(t, err)

	resp, err := client.Do(&HTTPRequest{
		URL:    server.URL,
		Method: "GET",
		Headers: map[string]string{
			"X-Test-Header": "test-value",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"status":"ok"}`, string(resp.Body))
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
}

func TestHTTPClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"key":"value"}`, string(body))

		_, _ = w.Write([]byte(`{"received":true}`))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	resp, err := client.PostJSON(context.Background(), server.URL,
		map[string]string{"Authorization": "Bearer token"},
		map[string]string{"key": "value"})
	require.NoError(t, err)
	assert.Equal(t, `{"received":true}`, string(resp.Body))
}

func TestHTTPClient_PostJSON_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":"insufficient credits"}`))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	resp, err := client.PostJSON(context.Background(), server.URL, nil, map[string]string{})
	require.Error(t, err)
	require.NotNil(t, resp)

	var httpErr *common.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusPaymentRequired, httpErr.StatusCode)
	assert.Contains(t, httpErr.Message, "insufficient credits")
}

func TestHTTPClient_Redirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/redirect" {
			http.Redirect(w, r, "/final", http.StatusFound)
		} else if r.URL.Path == "/final" {
			fmt.Fprint(w, "ok")
		}
	}))
	defer ts.Close()

	logger := zerolog.Nop()

	clientFollow, _ := NewHTTPClientBuilder(logger).WithFollowRedirects(true).Build()
	req := &HTTPRequest{URL: ts.URL + "/redirect", Method: "GET"}
	resp, err := clientFollow.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(resp.Body))

	clientNoFollow, _ := NewHTTPClientBuilder(logger).WithFollowRedirects(false).Build()
	resp, err = clientNoFollow.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestHTTPClient_Get_MaxSize(t *testing.T) {
	longContent := "this is some very long content"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(longContent))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithMaxContentSize(10).Build()
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "this is so", string(resp.Body))
	assert.True(t, resp.Truncated)
}

func TestHTTPClient_Get_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	_, err = client.Get(context.Background(), server.URL, nil)
	var httpErr *common.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestHTTPClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithRetry(RetryHandlerConfig{MaxRetries: 1, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}).
		Build()
	require.NoError(t, err)

	_, err = client.Get(context.Background(), serverURL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNetworkFailure)
}
