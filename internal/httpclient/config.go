package httpclient

import (
	"context"
	"net/http"
	"time"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout               time.Duration     // Request timeout
	InsecureSkipVerify    bool              // Skip TLS verification
	FollowRedirects       bool              // Whether to follow redirects
	MaxRedirects          int               // Maximum number of redirects to follow
	Proxy                 string            // Proxy URL
	CustomHeaders         map[string]string // Headers added to every request
	UserAgent             string
	MaxContentSize        int // Response bodies are cut at this many bytes, 0 for no limit
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ExpectContinueTimeout time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	EnableHTTP2           bool
	Retry                 RetryHandlerConfig
}

// DefaultHTTPClientConfig returns the default HTTP client configuration
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:               30 * time.Second,
		FollowRedirects:       true,
		MaxRedirects:          10,
		UserAgent:             "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		EnableHTTP2:           true,
		CustomHeaders: map[string]string{
			"Accept-Language": "it-IT,it;q=0.9,en-US;q=0.8,en;q=0.7",
		},
		Retry: DefaultRetryHandlerConfig(),
	}
}

// HTTPRequest represents an HTTP request
type HTTPRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	// Body is replayed on every retry attempt
	Body    []byte
	Context context.Context
}

// HTTPResponse represents an HTTP response
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Truncated  bool
}

// IsSuccess reports a 2xx status
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}
