// Package httpclient is the shared HTTP transport with retry and HTTP/2 support.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/aleister1102/motosearch/internal/common"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// HTTPClient wraps net/http.Client with default headers, retries and a body size cap
type HTTPClient struct {
	client       *http.Client
	config       HTTPClientConfig
	logger       zerolog.Logger
	retryHandler *RetryHandler
	bufferPool   sync.Pool
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	logger = logger.With().Str("component", "HTTPClient").Logger()

	transport := &http.Transport{
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		MaxConnsPerHost:       config.MaxConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	if config.Proxy != "" {
		proxyURL, err := url.Parse(config.Proxy)
		if err != nil {
			return nil, common.WrapError(err, "failed to parse proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Info().Str("proxy", config.Proxy).Msg("HTTP client configured with proxy")
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}

	if !config.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if config.MaxRedirects > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= config.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", config.MaxRedirects)
			}
			return nil
		}
	}

	c := &HTTPClient{
		client: client,
		config: config,
		logger: logger,
		bufferPool: sync.Pool{
			New: func() interface{} {
				b := make([]byte, 32*1024)
				return &b
			},
		},
	}
	if config.Retry.MaxRetries > 0 {
		c.retryHandler = NewRetryHandler(config.Retry, logger)
	}

	logger.Debug().
		Dur("timeout", config.Timeout).
		Bool("follow_redirects", config.FollowRedirects).
		Int("max_retries", config.Retry.MaxRetries).
		Bool("http2_enabled", config.EnableHTTP2).
		Msg("HTTP client created")

	return c, nil
}

// Do performs an HTTP request, with retries if a retry handler is configured.
func (c *HTTPClient) Do(req *HTTPRequest) (*HTTPResponse, error) {
	if c.retryHandler != nil {
		ctx := req.Context
		if ctx == nil {
			ctx = context.Background()
		}
		return c.retryHandler.DoWithRetry(ctx, c.do, req)
	}
	return c.do(req)
}

// PostJSON marshals payload, posts it and returns the raw response.
// Non-2xx responses are returned together with a *common.HTTPError.
func (c *HTTPClient) PostJSON(ctx context.Context, targetURL string, headers map[string]string, payload any) (*HTTPResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, common.WrapError(err, "failed to marshal request body")
	}

	reqHeaders := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
	for k, v := range headers {
		reqHeaders[k] = v
	}

	resp, err := c.Do(&HTTPRequest{
		URL:     targetURL,
		Method:  http.MethodPost,
		Headers: reqHeaders,
		Body:    body,
		Context: ctx,
	})
	if err != nil {
		return resp, err
	}
	if !resp.IsSuccess() {
		return resp, common.NewHTTPErrorWithURL(resp.StatusCode, snippet(resp.Body), targetURL)
	}
	return resp, nil
}

// Get fetches targetURL and fails on non-2xx responses
func (c *HTTPClient) Get(ctx context.Context, targetURL string, headers map[string]string) (*HTTPResponse, error) {
	resp, err := c.Do(&HTTPRequest{
		URL:     targetURL,
		Method:  http.MethodGet,
		Headers: headers,
		Context: ctx,
	})
	if err != nil {
		return resp, err
	}
	if !resp.IsSuccess() {
		c.logger.Warn().Str("url", targetURL).Int("status_code", resp.StatusCode).Msg("Received non-OK HTTP status")
		return resp, common.NewHTTPErrorWithURL(resp.StatusCode, snippet(resp.Body), targetURL)
	}
	return resp, nil
}

func (c *HTTPClient) do(req *HTTPRequest) (*HTTPResponse, error) {
	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, common.WrapError(err, "failed to create HTTP request")
	}

	for key, value := range c.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}
	if c.config.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "*/*")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, common.NewNetworkError(req.URL, "HTTP request failed", err)
	}
	defer resp.Body.Close()

	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)
	buf := bytes.NewBuffer((*bufPtr)[:0])

	var reader io.Reader = resp.Body
	if c.config.MaxContentSize > 0 {
		reader = io.LimitReader(resp.Body, int64(c.config.MaxContentSize)+1)
	}
	if _, err := io.Copy(buf, reader); err != nil {
		return nil, common.NewNetworkError(req.URL, "failed to read response body", err)
	}

	bodyBytes := make([]byte, buf.Len())
	copy(bodyBytes, buf.Bytes())

	httpResp := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    make(map[string]string, len(resp.Header)),
		Body:       bodyBytes,
	}
	if c.config.MaxContentSize > 0 && len(bodyBytes) > c.config.MaxContentSize {
		c.logger.Warn().
			Str("url", req.URL).
			Int("max_content_size", c.config.MaxContentSize).
			Msg("Content size exceeds limit, truncating")
		httpResp.Body = bodyBytes[:c.config.MaxContentSize]
		httpResp.Truncated = true
	}

	for key, values := range resp.Header {
		if len(values) > 0 {
			httpResp.Headers[key] = values[0]
		}
	}

	return httpResp, nil
}
